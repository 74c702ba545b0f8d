package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
)

// Resolution is the outcome of resolving the words of one list.
type Resolution struct {
	// ListSize is the number of words in the list, due or not.
	ListSize int
	// Words are the selected words in list order, enriched.
	Words []domain.EnrichedWord
}

// DueSetResolver determines which words of a list are due for a learner.
// Words the learner has never encountered get a default progress row that is
// due immediately.
type DueSetResolver struct {
	vocab    store.VocabularyStore
	progress store.ProgressStore
	joiner   *EnrichmentJoiner
	metrics  *Metrics
	logger   *slog.Logger
}

// NewDueSetResolver creates a resolver.
func NewDueSetResolver(
	vocab store.VocabularyStore,
	progress store.ProgressStore,
	joiner *EnrichmentJoiner,
	metrics *Metrics,
	logger *slog.Logger,
) *DueSetResolver {
	if vocab == nil {
		panic("vocab cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if joiner == nil {
		joiner = NewEnrichmentJoiner(vocab, nil, metrics, logger)
	}

	return &DueSetResolver{
		vocab:    vocab,
		progress: progress,
		joiner:   joiner,
		metrics:  metrics,
		logger:   logger.With(slog.String("component", "due_set_resolver")),
	}
}

// ResolveDue returns up to limit words of listID that are due for userID at
// now, in list order. Missing progress rows are created with ignore-on-conflict
// semantics, so concurrent callers never fail on each other. An empty list or
// a limit <= 0 yields an empty result.
func (r *DueSetResolver) ResolveDue(
	ctx context.Context,
	userID, listID uuid.UUID,
	limit int,
	now time.Time,
) (*Resolution, error) {
	log := logger.FromContextOrDefault(ctx, r.logger)
	start := time.Now()
	defer func() { r.metrics.DueResolution.Observe(time.Since(start).Seconds()) }()

	res := &Resolution{Words: []domain.EnrichedWord{}}
	if limit <= 0 {
		return res, nil
	}

	words, err := r.vocab.GetWordsByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load words of list: %w", err)
	}
	res.ListSize = len(words)
	if len(words) == 0 {
		log.Debug("list has no words", slog.String("list_id", listID.String()))
		return res, nil
	}

	ids := make([]uuid.UUID, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}

	existing, err := r.progress.GetForWords(ctx, userID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load word progress: %w", err)
	}

	var defaults []*domain.WordProgress
	for _, w := range words {
		if _, ok := existing[w.ID]; ok {
			continue
		}
		p, err := domain.NewWordProgress(userID, w.ID, domain.DefaultBulkIntervalDays, now)
		if err != nil {
			return nil, fmt.Errorf("failed to build default progress: %w", err)
		}
		defaults = append(defaults, p)
	}

	if len(defaults) > 0 {
		inserted, err := r.progress.BulkInsertDefaults(ctx, defaults)
		if err != nil {
			return nil, fmt.Errorf("failed to create default progress: %w", err)
		}
		r.metrics.ProgressRowsCreated.Add(float64(inserted))
		log.Debug("created default progress for new words",
			slog.String("user_id", userID.String()),
			slog.String("list_id", listID.String()),
			slog.Int("requested", len(defaults)),
			slog.Int("inserted", inserted))
	}

	due := make([]domain.Word, 0, min(limit, len(words)))
	for _, w := range words {
		if len(due) == limit {
			break
		}
		// A word without a stored row was just given one that is due at now.
		if p, ok := existing[w.ID]; ok && !p.IsDue(now) {
			continue
		}
		due = append(due, w)
	}

	res.Words = r.joiner.Enrich(ctx, due)

	log.Debug("resolved due words",
		slog.String("user_id", userID.String()),
		slog.String("list_id", listID.String()),
		slog.Int("list_size", res.ListSize),
		slog.Int("due_count", len(res.Words)))
	return res, nil
}

// ResolveAll returns the first limit words of listID regardless of due
// status. It is used for practice mode and never touches progress.
func (r *DueSetResolver) ResolveAll(ctx context.Context, listID uuid.UUID, limit int) (*Resolution, error) {
	res := &Resolution{Words: []domain.EnrichedWord{}}
	if limit <= 0 {
		return res, nil
	}

	words, err := r.vocab.GetWordsByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to load words of list: %w", err)
	}
	res.ListSize = len(words)
	if len(words) > limit {
		words = words[:limit]
	}

	res.Words = r.joiner.Enrich(ctx, words)
	return res, nil
}
