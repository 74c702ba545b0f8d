package review

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/vocab-review/internal/domain"
	"github.com/phrazzld/vocab-review/internal/generation"
	"github.com/phrazzld/vocab-review/internal/platform/logger"
	"github.com/phrazzld/vocab-review/internal/store"
	"golang.org/x/sync/errgroup"
)

const (
	// maxConcurrentGenerations bounds the example generator calls of one Enrich.
	maxConcurrentGenerations = 4

	// DefaultGenerationTimeout is the budget for all example generation of
	// one Enrich call. Words not generated in time keep empty examples.
	DefaultGenerationTimeout = 5 * time.Second
)

// ExampleGenerator produces example sentences for a word that has none stored.
type ExampleGenerator = generation.Generator

// EnrichmentJoiner attaches examples and synonyms to words for presentation.
// Enrichment is best-effort: a failed lookup is logged and leaves empty
// arrays, it never fails the caller.
type EnrichmentJoiner struct {
	vocab             store.VocabularyStore
	generator         ExampleGenerator
	generationTimeout time.Duration
	metrics           *Metrics
	logger            *slog.Logger
}

// NewEnrichmentJoiner creates a joiner over vocab. generator may be nil, in
// which case words without stored examples keep an empty list.
func NewEnrichmentJoiner(
	vocab store.VocabularyStore,
	generator ExampleGenerator,
	metrics *Metrics,
	logger *slog.Logger,
) *EnrichmentJoiner {
	if vocab == nil {
		panic("vocab cannot be nil")
	}
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &EnrichmentJoiner{
		vocab:             vocab,
		generator:         generator,
		generationTimeout: DefaultGenerationTimeout,
		metrics:           metrics,
		logger:            logger.With(slog.String("component", "enrichment_joiner")),
	}
}

// WithGenerationTimeout overrides DefaultGenerationTimeout. Non-positive
// values are ignored.
func (j *EnrichmentJoiner) WithGenerationTimeout(d time.Duration) *EnrichmentJoiner {
	if d > 0 {
		j.generationTimeout = d
	}
	return j
}

// Join returns the enrichment of every id in wordIDs. The examples and
// synonyms lookups run concurrently and fail independently.
func (j *EnrichmentJoiner) Join(ctx context.Context, wordIDs []uuid.UUID) map[uuid.UUID]domain.Enrichment {
	out := make(map[uuid.UUID]domain.Enrichment, len(wordIDs))
	for _, id := range wordIDs {
		out[id] = domain.EmptyEnrichment()
	}
	if len(wordIDs) == 0 {
		return out
	}

	var examples, synonyms map[uuid.UUID][]string

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		examples = j.lookup(gCtx, "examples", j.vocab.GetExamplesForWords, wordIDs)
		return nil
	})
	g.Go(func() error {
		synonyms = j.lookup(gCtx, "synonyms", j.vocab.GetSynonymsForWords, wordIDs)
		return nil
	})
	_ = g.Wait()

	for id, e := range out {
		if v, ok := examples[id]; ok {
			e.Examples = v
		}
		if v, ok := synonyms[id]; ok {
			e.Synonyms = v
		}
		out[id] = e
	}
	return out
}

func (j *EnrichmentJoiner) lookup(
	ctx context.Context,
	kind string,
	fn func(context.Context, []uuid.UUID) (map[uuid.UUID][]string, error),
	wordIDs []uuid.UUID,
) map[uuid.UUID][]string {
	values, err := fn(ctx, wordIDs)
	if err != nil {
		j.metrics.EnrichmentFailures.WithLabelValues(kind).Inc()
		logger.FromContextOrDefault(ctx, j.logger).Warn("word enrichment degraded",
			slog.String("error", fmt.Errorf("%w: %s: %w", ErrEnrichmentFailure, kind, err).Error()),
			slog.String("kind", kind),
			slog.Int("word_count", len(wordIDs)))
		return nil
	}
	return values
}

// Enrich joins enrichment onto words, preserving their order. When a
// generator is configured, words without stored examples get generated ones,
// which are stored so later calls read them instead of generating again.
func (j *EnrichmentJoiner) Enrich(ctx context.Context, words []domain.Word) []domain.EnrichedWord {
	ids := make([]uuid.UUID, len(words))
	for i, w := range words {
		ids[i] = w.ID
	}
	enrichment := j.Join(ctx, ids)

	out := make([]domain.EnrichedWord, len(words))
	for i, w := range words {
		out[i] = domain.EnrichedWord{Word: w, Enrichment: enrichment[w.ID]}
	}

	if j.generator != nil {
		j.generateMissingExamples(ctx, out)
	}
	return out
}

func (j *EnrichmentJoiner) generateMissingExamples(ctx context.Context, words []domain.EnrichedWord) {
	log := logger.FromContextOrDefault(ctx, j.logger)

	genCtx, cancel := context.WithTimeout(ctx, j.generationTimeout)
	defer cancel()

	g, gCtx := errgroup.WithContext(genCtx)
	g.SetLimit(maxConcurrentGenerations)

	for i := range words {
		if len(words[i].Examples) > 0 {
			continue
		}
		g.Go(func() error {
			examples, err := j.generator.GenerateExamples(gCtx, words[i].Term, words[i].Definition)
			if err != nil {
				j.metrics.EnrichmentFailures.WithLabelValues("generated_examples").Inc()
				log.Warn("example generation failed",
					slog.String("error", err.Error()),
					slog.Bool("permanent", generation.IsPermanent(err)),
					slog.String("word_id", words[i].ID.String()))
				return nil
			}
			if len(examples) == 0 {
				return nil
			}
			words[i].Examples = examples

			if _, err := j.vocab.AddExamples(gCtx, words[i].ID, examples); err != nil {
				j.metrics.EnrichmentFailures.WithLabelValues("store_examples").Inc()
				log.Warn("failed to store generated examples",
					slog.String("error", err.Error()),
					slog.String("word_id", words[i].ID.String()))
			}
			return nil
		})
	}
	_ = g.Wait()
}
