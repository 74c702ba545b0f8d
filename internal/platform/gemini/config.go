package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/vocab-review/internal/config"
	"github.com/phrazzld/vocab-review/internal/generation"
)

const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
	defaultRequestsPerMinute = 60
	defaultExamplesPerWord   = 2
)

// validateConfig checks the required settings and returns a copy of cfg with
// defaults applied to the optional ones.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (config.LLMConfig, error) {
	if cfg.GeminiAPIKey == "" {
		return cfg, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return cfg, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.MaxRetries < 0 {
		logger.WarnContext(ctx, "Invalid max retries value, using default",
			"value", cfg.MaxRetries,
			"default", defaultMaxRetries)
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelaySeconds < 1 {
		logger.WarnContext(ctx, "Invalid retry delay value, using default",
			"value", cfg.RetryDelaySeconds,
			"default", defaultRetryDelaySeconds)
		cfg.RetryDelaySeconds = defaultRetryDelaySeconds
	}
	if cfg.RequestsPerMinute < 1 {
		cfg.RequestsPerMinute = defaultRequestsPerMinute
	}
	if cfg.ExamplesPerWord < 1 {
		cfg.ExamplesPerWord = defaultExamplesPerWord
	}

	return cfg, nil
}
