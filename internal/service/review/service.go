package review

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// Service is the review API consumed by the presentation layer.
type Service interface {
	// GetDueWords returns up to limit due words of listID for userID, enriched
	// with examples and synonyms. limit is capped at the configured maximum;
	// a limit <= 0 returns no words.
	GetDueWords(ctx context.Context, userID, listID uuid.UUID, limit int) ([]domain.EnrichedWord, error)

	// StartSession opens a session over the due words of listID, or over the
	// first words of the list when practiceMode is set.
	//
	// Returns:
	//   - ErrEmptyList if the list has no words
	//   - ErrNoWordsDue if nothing is due and practiceMode is not set
	//   - ErrSessionActive if the user already has an active session
	StartSession(
		ctx context.Context,
		userID, listID uuid.UUID,
		sessionType domain.SessionType,
		practiceMode bool,
	) (*StartedSession, error)

	// SubmitResult records an answer for wordID and returns the word's new
	// scheduling state.
	//
	// Returns:
	//   - ErrInvalidSession if the session is missing, not owned or completed
	//   - ErrWordNotInSession if wordID is not in the session snapshot
	SubmitResult(
		ctx context.Context,
		sessionID, userID, wordID uuid.UUID,
		result domain.ReviewResult,
		responseTimeMs int,
	) (*domain.WordProgress, error)

	// EndSession completes the session and returns its summary. It is
	// idempotent. Returns ErrInvalidSession if the session is missing or not owned.
	EndSession(ctx context.Context, sessionID, userID uuid.UUID) (*domain.SessionSummary, error)

	// GetActiveSession returns the user's active session, or nil if there is none.
	GetActiveSession(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error)

	// ListsWithDueWords pages over the lists the user studies that have due words.
	ListsWithDueWords(ctx context.Context, userID uuid.UUID, page, pageSize int) (*ListsPage, error)

	// DueWordsGroupedByList returns the user's due words grouped by list.
	DueWordsGroupedByList(ctx context.Context, userID uuid.UUID) ([]domain.ListDueWords, error)

	// GetWordProgress returns the scheduling state of one word.
	// Returns ErrProgressNotFound if the user has never encountered it.
	GetWordProgress(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error)

	// Stats returns the user's review statistics.
	Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error)
}

// ListsPage is one page of ListsWithDueWords.
type ListsPage struct {
	Lists      []domain.ListDueCount `json:"lists"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	Total      int                   `json:"total"`
	TotalPages int                   `json:"total_pages"`
}

// Limits bounds the number of words per request and per session.
type Limits struct {
	// DefaultLimit is the session size and the page size when none is given.
	DefaultLimit int
	// MaxLimit caps any caller-provided limit.
	MaxLimit int
}

// Option configures a Service.
type Option func(*reviewService)

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *reviewService) {
		s.now = now
	}
}

var _ Service = (*reviewService)(nil)

type reviewService struct {
	resolver *DueSetResolver
	manager  *SessionManager
	progress store.ProgressStore
	sessions store.SessionStore
	results  store.ResultStore
	limits   Limits
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates the review Service. Limits that are not positive fall
// back to 20 words per session and 100 per request.
func NewService(
	resolver *DueSetResolver,
	manager *SessionManager,
	progress store.ProgressStore,
	sessions store.SessionStore,
	results store.ResultStore,
	limits Limits,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if manager == nil {
		panic("manager cannot be nil")
	}
	if progress == nil || sessions == nil || results == nil {
		panic("stores cannot be nil")
	}
	if limits.MaxLimit <= 0 {
		limits.MaxLimit = 100
	}
	if limits.DefaultLimit <= 0 {
		limits.DefaultLimit = min(20, limits.MaxLimit)
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &reviewService{
		resolver: resolver,
		manager:  manager,
		progress: progress,
		sessions: sessions,
		results:  results,
		limits:   limits,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "review_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *reviewService) clock() time.Time {
	return s.now().UTC()
}

// GetDueWords implements Service.
func (s *reviewService) GetDueWords(
	ctx context.Context,
	userID, listID uuid.UUID,
	limit int,
) ([]domain.EnrichedWord, error) {
	res, err := s.resolver.ResolveDue(ctx, userID, listID, min(limit, s.limits.MaxLimit), s.clock())
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to resolve due words",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()),
			slog.String("list_id", listID.String()))
		return nil, NewServiceError("get_due_words", "failed to resolve due words", err)
	}
	return res.Words, nil
}

// StartSession implements Service.
func (s *reviewService) StartSession(
	ctx context.Context,
	userID, listID uuid.UUID,
	sessionType domain.SessionType,
	practiceMode bool,
) (*StartedSession, error) {
	return s.manager.Start(ctx, userID, listID, sessionType, practiceMode, s.limits.DefaultLimit, s.clock())
}

// SubmitResult implements Service.
func (s *reviewService) SubmitResult(
	ctx context.Context,
	sessionID, userID, wordID uuid.UUID,
	result domain.ReviewResult,
	responseTimeMs int,
) (*domain.WordProgress, error) {
	return s.manager.SubmitResult(ctx, sessionID, userID, wordID, result, responseTimeMs, s.clock())
}

// EndSession implements Service.
func (s *reviewService) EndSession(ctx context.Context, sessionID, userID uuid.UUID) (*domain.SessionSummary, error) {
	return s.manager.End(ctx, sessionID, userID, s.clock())
}

// GetActiveSession implements Service.
func (s *reviewService) GetActiveSession(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error) {
	return s.manager.FindActiveSession(ctx, userID)
}

// ListsWithDueWords implements Service.
func (s *reviewService) ListsWithDueWords(
	ctx context.Context,
	userID uuid.UUID,
	page, pageSize int,
) (*ListsPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.limits.DefaultLimit
	}
	pageSize = min(pageSize, s.limits.MaxLimit)
	now := s.clock()

	total, err := s.progress.CountListsWithDueWords(ctx, userID, now)
	if err != nil {
		return nil, NewServiceError("lists_with_due_words", "failed to count lists", err)
	}

	lists, err := s.progress.ListsWithDueWords(ctx, userID, now, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewServiceError("lists_with_due_words", "failed to load lists", err)
	}

	return &ListsPage{
		Lists:      lists,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

// DueWordsGroupedByList implements Service.
func (s *reviewService) DueWordsGroupedByList(ctx context.Context, userID uuid.UUID) ([]domain.ListDueWords, error) {
	groups, err := s.progress.DueWordsByList(ctx, userID, s.clock())
	if err != nil {
		return nil, NewServiceError("due_words_by_list", "failed to load due words", err)
	}
	return groups, nil
}

// GetWordProgress implements Service.
func (s *reviewService) GetWordProgress(ctx context.Context, userID, wordID uuid.UUID) (*domain.WordProgress, error) {
	p, err := s.progress.Get(ctx, userID, wordID)
	if err != nil {
		if errors.Is(err, store.ErrProgressNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, NewServiceError("get_word_progress", "failed to load word progress", err)
	}
	return p, nil
}

// Stats implements Service.
func (s *reviewService) Stats(ctx context.Context, userID uuid.UUID) (*domain.ReviewStats, error) {
	stats, err := s.progress.Stats(ctx, userID, s.clock())
	if err != nil {
		return nil, NewServiceError("stats", "failed to load progress stats", err)
	}

	stats.CompletedSessions, err = s.sessions.CountCompleted(ctx, userID)
	if err != nil {
		return nil, NewServiceError("stats", "failed to count sessions", err)
	}

	stats.CorrectResults, stats.IncorrectResults, err = s.results.CountByResult(ctx, userID)
	if err != nil {
		return nil, NewServiceError("stats", "failed to count results", err)
	}

	if answered := stats.CorrectResults + stats.IncorrectResults; answered > 0 {
		stats.Accuracy = float64(stats.CorrectResults) / float64(answered)
	}
	return stats, nil
}
