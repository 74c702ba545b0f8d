package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
)

// VocabularyStore provides access to vocabulary lists, words and their
// presentation data. List and word CRUD live outside the review scheduler;
// the only write is caching generated example sentences.
type VocabularyStore interface {
	// GetWordsByList returns the words of a list in list order
	// (creation time, then id). An unknown or empty list yields an empty slice.
	GetWordsByList(ctx context.Context, listID uuid.UUID) ([]domain.Word, error)

	// GetExamplesForWords returns example sentences keyed by word id.
	// Words without examples are absent from the map.
	GetExamplesForWords(ctx context.Context, wordIDs []uuid.UUID) (map[uuid.UUID][]string, error)

	// GetSynonymsForWords returns synonyms keyed by word id.
	// Words without synonyms are absent from the map.
	GetSynonymsForWords(ctx context.Context, wordIDs []uuid.UUID) (map[uuid.UUID][]string, error)

	// AddExamples stores example sentences for a word that has none yet.
	// It is a no-op when the word already has examples and returns the
	// number of sentences written.
	AddExamples(ctx context.Context, wordID uuid.UUID, examples []string) (int, error)
}
