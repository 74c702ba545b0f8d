package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/api/shared"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/service/review"
)

// ReviewHandler serves the review endpoints.
type ReviewHandler struct {
	reviewService review.Service
	defaultLimit  int
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler. defaultLimit is the number of
// due words returned when the request gives no limit.
func NewReviewHandler(reviewService review.Service, defaultLimit int, logger *slog.Logger) *ReviewHandler {
	if reviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("reviewService cannot be nil for ReviewHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}
	if defaultLimit < 1 {
		defaultLimit = 20
	}

	return &ReviewHandler{
		reviewService: reviewService,
		defaultLimit:  defaultLimit,
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// Routes registers the review endpoints on r. Callers are expected to have
// applied the authentication middleware.
func (h *ReviewHandler) Routes(r chi.Router) {
	r.Route("/review", func(r chi.Router) {
		r.Get("/due", h.GetDueWords)
		r.Get("/due/summary", h.GetDueSummary)
		r.Get("/lists/due", h.GetListsWithDueWords)
		r.Get("/stats", h.GetStats)
		r.Get("/words/{wordID}/progress", h.GetWordProgress)

		r.Get("/sessions/status", h.GetActiveSession)
		r.Post("/sessions/start", h.StartSession)
		r.Post("/sessions/{id}/submit", h.SubmitResult)
		r.Post("/sessions/{id}/end", h.EndSession)
	})
}

// GetDueWords handles GET /review/due?list_id=&limit=
func (h *ReviewHandler) GetDueWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	listID, err := getQueryUUID(r, "list_id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	limit, err := getQueryInt(r, "limit", h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if limit < 0 {
		HandleAPIError(w, r, domain.NewValidationError("limit", "must not be negative", domain.ErrValidation), "")
		return
	}

	words, err := h.reviewService.GetDueWords(r.Context(), userID, listID, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due words")
		return
	}

	log.Debug("resolved due words",
		slog.String("list_id", listID.String()),
		slog.Int("count", len(words)))
	shared.RespondWithData(w, r, http.StatusOK, DueWordsResponse{Words: words, Count: len(words)})
}

// GetListsWithDueWords handles GET /review/lists/due?page=&page_size=
func (h *ReviewHandler) GetListsWithDueWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	page, err := getQueryInt(r, "page", 1)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	pageSize, err := getQueryInt(r, "page_size", h.defaultLimit)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.reviewService.ListsWithDueWords(r.Context(), userID, page, pageSize)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get lists with due words")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, result)
}

// GetDueSummary handles GET /review/due/summary
func (h *ReviewHandler) GetDueSummary(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	lists, err := h.reviewService.DueWordsGroupedByList(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get due words summary")
		return
	}
	if lists == nil {
		lists = []domain.ListDueWords{}
	}

	shared.RespondWithData(w, r, http.StatusOK, DueSummaryResponse{Lists: lists})
}

// GetActiveSession handles GET /review/sessions/status
func (h *ReviewHandler) GetActiveSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	session, err := h.reviewService.GetActiveSession(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get session status")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, ActiveSessionResponse{Session: session})
}

// StartSession handles POST /review/sessions/start
func (h *ReviewHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	listID, err := uuid.Parse(req.ListID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("list_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	started, err := h.reviewService.StartSession(
		r.Context(),
		userID,
		listID,
		domain.SessionType(req.SessionType),
		req.PracticeMode,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start review session")
		return
	}

	log.Info("review session started",
		slog.String("session_id", started.Session.ID.String()),
		slog.String("list_id", listID.String()),
		slog.Bool("practice_mode", req.PracticeMode),
		slog.Int("total_words", started.Session.TotalWords))
	shared.RespondWithData(w, r, http.StatusCreated, started)
}

// SubmitResult handles POST /review/sessions/{id}/submit
func (h *ReviewHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	sessionID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmitResultRequest
	if !decodeAndValidate(w, r, &req, log) {
		return
	}
	wordID, err := uuid.Parse(req.WordID)
	if err != nil {
		HandleAPIError(w, r, domain.NewValidationError("word_id", "has invalid format", domain.ErrInvalidID), "")
		return
	}

	progress, err := h.reviewService.SubmitResult(
		r.Context(),
		sessionID,
		userID,
		wordID,
		domain.ReviewResult(req.Result),
		req.ResponseTimeMs,
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit result")
		return
	}

	log.Debug("review result recorded",
		slog.String("session_id", sessionID.String()),
		slog.String("word_id", wordID.String()),
		slog.String("result", req.Result))
	shared.RespondWithData(w, r, http.StatusOK, progress)
}

// EndSession handles POST /review/sessions/{id}/end
func (h *ReviewHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	sessionID, err := getPathUUID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	summary, err := h.reviewService.EndSession(r.Context(), sessionID, userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to end review session")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, summary)
}

// GetWordProgress handles GET /review/words/{wordID}/progress
func (h *ReviewHandler) GetWordProgress(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	wordID, err := getPathUUID(r, "wordID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	progress, err := h.reviewService.GetWordProgress(r.Context(), userID, wordID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get word progress")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, progress)
}

// GetStats handles GET /review/stats
func (h *ReviewHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := requireUserID(w, r, log)
	if !ok {
		return
	}

	stats, err := h.reviewService.Stats(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review statistics")
		return
	}

	shared.RespondWithData(w, r, http.StatusOK, stats)
}
