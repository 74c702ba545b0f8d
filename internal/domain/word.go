package domain

import (
	"github.com/google/uuid"
)

// Word is a vocabulary entry belonging to a list. Words are owned by the list
// CRUD surface; the review scheduler only reads them.
type Word struct {
	ID         uuid.UUID `json:"id"`
	ListID     uuid.UUID `json:"list_id"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Phonetics  string    `json:"phonetics,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
}

// Enrichment holds presentation data attached to a word at review time.
type Enrichment struct {
	Examples []string `json:"examples"`
	Synonyms []string `json:"synonyms"`
}

// EmptyEnrichment returns an Enrichment with non-nil empty slices so that it
// serializes as empty arrays.
func EmptyEnrichment() Enrichment {
	return Enrichment{Examples: []string{}, Synonyms: []string{}}
}

// EnrichedWord is a Word together with its examples and synonyms.
type EnrichedWord struct {
	Word
	Enrichment
}

// ListDueCount reports how many words of one list are due for a learner.
type ListDueCount struct {
	ListID     uuid.UUID `json:"list_id"`
	ListName   string    `json:"list_name"`
	TotalWords int       `json:"total_words"`
	DueCount   int       `json:"due_count"`
}

// WordRef is the minimal identification of a word.
type WordRef struct {
	ID   uuid.UUID `json:"id"`
	Term string    `json:"term"`
}

// ListDueWords groups the due words of one list.
type ListDueWords struct {
	ListID   uuid.UUID `json:"list_id"`
	ListName string    `json:"list_name"`
	Words    []WordRef `json:"words"`
}
