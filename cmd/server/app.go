package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/vocab-review/internal/config"
	"github.com/phrazzld/vocab-review/internal/domain/srs"
	"github.com/phrazzld/vocab-review/internal/platform/gemini"
	"github.com/phrazzld/vocab-review/internal/platform/postgres"
	"github.com/phrazzld/vocab-review/internal/service/auth"
	"github.com/phrazzld/vocab-review/internal/service/review"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// application holds the shared dependencies of the server and releases
// them on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	registry *prometheus.Registry

	jwtService    auth.JWTService
	reviewService review.Service
}

// newApplication wires stores, the scheduling algorithm and the review
// services over db.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: newRegistry(),
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	srsService, err := newSRSService(cfg.Review.SRS)
	if err != nil {
		return nil, fmt.Errorf("failed to create SRS service: %w", err)
	}

	generator, err := newExampleGenerator(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize example generator: %w", err)
	}

	vocabStore := postgres.NewPostgresVocabularyStore(db, logger)
	progressStore := postgres.NewPostgresProgressStore(db, logger)
	sessionStore := postgres.NewPostgresSessionStore(db, logger)
	resultStore := postgres.NewPostgresResultStore(db, logger)

	metrics := review.NewMetrics(app.registry)
	joiner := review.NewEnrichmentJoiner(vocabStore, generator, metrics, logger).
		WithGenerationTimeout(time.Duration(cfg.LLM.GenerationTimeoutSeconds) * time.Second)
	resolver := review.NewDueSetResolver(vocabStore, progressStore, joiner, metrics, logger)
	manager := review.NewSessionManager(
		db,
		resolver,
		sessionStore,
		resultStore,
		progressStore,
		srsService,
		metrics,
		logger,
	)

	app.reviewService = review.NewService(
		resolver,
		manager,
		progressStore,
		sessionStore,
		resultStore,
		review.Limits{
			DefaultLimit: cfg.Review.DefaultLimit,
			MaxLimit:     cfg.Review.MaxLimit,
		},
		logger,
	)

	logger.Info("Application initialized successfully",
		"llm_enabled", generator != nil)
	return app, nil
}

// Run serves the API until ctx is cancelled, then releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// newSRSService builds the scheduling service, applying any configured
// parameter overrides.
func newSRSService(cfg config.SRSConfig) (srs.Service, error) {
	params, err := srs.NewParams(srs.ParamsConfig{
		InitialEaseFactor:    cfg.InitialEaseFactor,
		MinEaseFactor:        cfg.MinEaseFactor,
		MaxEaseFactor:        cfg.MaxEaseFactor,
		CorrectEaseBonus:     cfg.CorrectEaseBonus,
		IncorrectEasePenalty: cfg.IncorrectEasePenalty,
		FirstInterval:        cfg.FirstInterval,
		SecondInterval:       cfg.SecondInterval,
		LapseInterval:        cfg.LapseInterval,
		MaxIntervalDays:      cfg.MaxIntervalDays,
	})
	if err != nil {
		return nil, err
	}
	return srs.NewServiceWithParams(params), nil
}

// newExampleGenerator returns nil when example generation is disabled.
func newExampleGenerator(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (review.ExampleGenerator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	generator, err := gemini.NewGeminiGenerator(ctx, logger.With("component", "example_generator"), cfg)
	if err != nil {
		return nil, err
	}
	return generator, nil
}
