package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// StartedSession is a new session together with its enriched words, so the
// client can render the first word without another round trip.
type StartedSession struct {
	Session *domain.RevisionSession `json:"session"`
	Words   []domain.EnrichedWord   `json:"words"`
}

// SessionManager runs the lifecycle of revision sessions:
// in_progress (or interrupted) until End moves it to completed.
type SessionManager struct {
	db       *sql.DB
	resolver *DueSetResolver
	sessions store.SessionStore
	results  store.ResultStore
	progress store.ProgressStore
	srs      srs.Service
	metrics  *Metrics
	logger   *slog.Logger
}

// NewSessionManager creates a session manager. db is used to run result
// submission and session completion in transactions.
func NewSessionManager(
	db *sql.DB,
	resolver *DueSetResolver,
	sessions store.SessionStore,
	results store.ResultStore,
	progress store.ProgressStore,
	srsService srs.Service,
	metrics *Metrics,
	logger *slog.Logger,
) *SessionManager {
	if db == nil {
		panic("db cannot be nil")
	}
	if resolver == nil {
		panic("resolver cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if results == nil {
		panic("results cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SessionManager{
		db:       db,
		resolver: resolver,
		sessions: sessions,
		results:  results,
		progress: progress,
		srs:      srsService,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "session_manager")),
	}
}

// FindActiveSession returns the user's most recently started in_progress or
// interrupted session, or nil if there is none.
func (m *SessionManager) FindActiveSession(ctx context.Context, userID uuid.UUID) (*domain.RevisionSession, error) {
	session, err := m.sessions.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, NewServiceError("find_active_session", "failed to look up active session", err)
	}
	return session, nil
}

// Start resolves the words of listID and opens a session over them.
//
// Without practiceMode only due words are used and ErrNoWordsDue is returned
// when there are none. ErrEmptyList is returned when the list has no words,
// and ErrSessionActive when the user already has an active session.
func (m *SessionManager) Start(
	ctx context.Context,
	userID, listID uuid.UUID,
	sessionType domain.SessionType,
	practiceMode bool,
	limit int,
	now time.Time,
) (*StartedSession, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if !sessionType.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidSessionType, sessionType)
	}

	var (
		res *Resolution
		err error
	)
	mode := "due"
	if practiceMode {
		mode = "practice"
		res, err = m.resolver.ResolveAll(ctx, listID, limit)
	} else {
		res, err = m.resolver.ResolveDue(ctx, userID, listID, limit, now)
	}
	if err != nil {
		return nil, NewServiceError("start_session", "failed to resolve session words", err)
	}

	if res.ListSize == 0 {
		log.Info("cannot start session on empty list",
			slog.String("user_id", userID.String()),
			slog.String("list_id", listID.String()))
		return nil, ErrEmptyList
	}
	if len(res.Words) == 0 {
		log.Debug("no words due for session",
			slog.String("user_id", userID.String()),
			slog.String("list_id", listID.String()))
		return nil, ErrNoWordsDue
	}

	wordIDs := make([]uuid.UUID, len(res.Words))
	for i, w := range res.Words {
		wordIDs[i] = w.ID
	}

	session, err := domain.NewRevisionSession(userID, listID, sessionType, wordIDs, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	if err := m.sessions.Create(ctx, session); err != nil {
		if errors.Is(err, store.ErrActiveSessionExists) {
			return nil, ErrSessionActive
		}
		return nil, NewServiceError("start_session", "failed to create session", err)
	}

	m.metrics.SessionsStarted.WithLabelValues(string(sessionType), mode).Inc()
	log.Info("review session started",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("list_id", listID.String()),
		slog.String("mode", mode),
		slog.Int("total_words", session.TotalWords))

	return &StartedSession{Session: session, Words: res.Words}, nil
}

// SubmitResult records one answer and reschedules the word.
//
// Appending the result and the read-modify-write of the word's progress run
// in one transaction with the session and progress rows locked. Submitting
// the same word again appends another result; the last one decides the
// word's final schedule.
func (m *SessionManager) SubmitResult(
	ctx context.Context,
	sessionID, userID, wordID uuid.UUID,
	result domain.ReviewResult,
	responseTimeMs int,
	now time.Time,
) (*domain.WordProgress, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if !result.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", domain.ErrValidation, domain.ErrInvalidReviewResult, result)
	}
	if responseTimeMs < 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, domain.ErrInvalidResponseTime)
	}

	var updated *domain.WordProgress
	err := store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := m.sessions.WithTx(tx)
		results := m.results.WithTx(tx)
		progress := m.progress.WithTx(tx)

		session, err := lockActiveSession(ctx, sessions, sessionID, userID)
		if err != nil {
			return err
		}
		if !session.Contains(wordID) {
			return ErrWordNotInSession
		}

		if session.Status == domain.SessionStatusInterrupted {
			if err := sessions.UpdateStatus(ctx, session.ID, domain.SessionStatusInProgress, nil); err != nil {
				return fmt.Errorf("failed to resume session: %w", err)
			}
		}

		row, err := domain.NewSessionWordResult(sessionID, wordID, result, responseTimeMs, now)
		if err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}
		if err := results.Append(ctx, row); err != nil {
			return fmt.Errorf("failed to append result: %w", err)
		}

		prev, err := progress.GetForUpdate(ctx, userID, wordID)
		if err != nil {
			if !errors.Is(err, store.ErrProgressNotFound) {
				return fmt.Errorf("failed to load word progress: %w", err)
			}
		}

		next, err := m.srs.NextState(userID, wordID, prev, result, now)
		if err != nil {
			return fmt.Errorf("failed to compute next review state: %w", err)
		}
		if err := progress.Upsert(ctx, next); err != nil {
			return fmt.Errorf("failed to save word progress: %w", err)
		}

		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSession) ||
			errors.Is(err, ErrWordNotInSession) ||
			errors.Is(err, domain.ErrValidation) {
			log.Warn("result rejected",
				slog.String("error", err.Error()),
				slog.String("session_id", sessionID.String()),
				slog.String("word_id", wordID.String()))
			return nil, err
		}
		log.Error("failed to submit result",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()),
			slog.String("word_id", wordID.String()))
		return nil, NewServiceError("submit_result", "failed to record result", err)
	}

	m.metrics.ResultsSubmitted.WithLabelValues(string(result)).Inc()
	log.Debug("result recorded",
		slog.String("session_id", sessionID.String()),
		slog.String("word_id", wordID.String()),
		slog.String("result", string(result)),
		slog.Int("interval_days", updated.IntervalDays),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Time("next_review_date", updated.NextReviewDate))

	return updated, nil
}

// lockActiveSession loads and locks a session that can still accept results.
func lockActiveSession(
	ctx context.Context,
	sessions store.SessionStore,
	sessionID, userID uuid.UUID,
) (*domain.RevisionSession, error) {
	session, err := sessions.GetForUpdate(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: session not found", ErrInvalidSession)
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Status.IsActive() {
		return nil, fmt.Errorf("%w: session is %s", ErrInvalidSession, session.Status)
	}
	return session, nil
}

// End completes the session and summarizes its results. Ending a session
// that is already completed changes nothing and returns the same summary.
func (m *SessionManager) End(
	ctx context.Context,
	sessionID, userID uuid.UUID,
	now time.Time,
) (*domain.SessionSummary, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	var (
		summary      domain.SessionSummary
		completedNow bool
	)
	err := store.RunInTransaction(ctx, m.db, func(ctx context.Context, tx *sql.Tx) error {
		sessions := m.sessions.WithTx(tx)

		session, err := sessions.GetForUpdate(ctx, sessionID, userID)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return fmt.Errorf("%w: session not found", ErrInvalidSession)
			}
			return fmt.Errorf("failed to load session: %w", err)
		}

		results, err := m.results.WithTx(tx).ListForSession(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("failed to load session results: %w", err)
		}

		if session.Status == domain.SessionStatusCompleted && session.CompletedAt != nil {
			summary = domain.Summarize(session, results, *session.CompletedAt)
			return nil
		}

		completedAt := now.UTC()
		if err := sessions.UpdateStatus(ctx, sessionID, domain.SessionStatusCompleted, &completedAt); err != nil {
			return fmt.Errorf("failed to complete session: %w", err)
		}
		summary = domain.Summarize(session, results, completedAt)
		completedNow = true
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidSession) {
			log.Warn("cannot end session",
				slog.String("error", err.Error()),
				slog.String("session_id", sessionID.String()))
			return nil, err
		}
		log.Error("failed to end session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, NewServiceError("end_session", "failed to complete session", err)
	}

	if completedNow {
		m.metrics.SessionsCompleted.Inc()
		log.Info("review session completed",
			slog.String("session_id", sessionID.String()),
			slog.String("user_id", userID.String()),
			slog.Int("total_words", summary.TotalWords),
			slog.Int("correct_answers", summary.CorrectAnswers),
			slog.Int("incorrect_answers", summary.IncorrectAnswers))
	}
	return &summary, nil
}
