package api

import (
	"github.com/phrazzld/vocab-review/internal/domain"
)

// StartSessionRequest is the body of POST /review/sessions/start.
type StartSessionRequest struct {
	ListID       string `json:"list_id"       validate:"required,uuid"`
	SessionType  string `json:"session_type"  validate:"required,oneof=flashcard fill_blank word_association"`
	PracticeMode bool   `json:"practice_mode"`
}

// SubmitResultRequest is the body of POST /review/sessions/{id}/submit.
type SubmitResultRequest struct {
	WordID         string `json:"word_id"          validate:"required,uuid"`
	Result         string `json:"result"           validate:"required,oneof=correct incorrect"`
	ResponseTimeMs int    `json:"response_time_ms" validate:"gte=0"`
}

// DueWordsResponse is the payload of GET /review/due.
type DueWordsResponse struct {
	Words []domain.EnrichedWord `json:"words"`
	Count int                   `json:"count"`
}

// ActiveSessionResponse is the payload of GET /review/sessions/status.
// Session is null when the learner has no active session.
type ActiveSessionResponse struct {
	Session *domain.RevisionSession `json:"session"`
}

// DueSummaryResponse is the payload of GET /review/due/summary.
type DueSummaryResponse struct {
	Lists []domain.ListDueWords `json:"lists"`
}
