package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by Load,
// e.g. VOCAB_DATABASE_URL for database.url.
const EnvPrefix = "VOCAB"

// defaults lists every configuration key. Registering a default for each key
// is what lets viper's AutomaticEnv resolve nested keys during Unmarshal.
var defaults = map[string]any{
	"server.port":                        8080,
	"server.log_level":                   "info",
	"server.request_timeout_seconds":     30,
	"server.shutdown_timeout_seconds":    15,
	"database.url":                       "",
	"database.max_open_conns":            10,
	"database.max_idle_conns":            5,
	"database.conn_max_lifetime_minutes": 5,
	"database.auto_migrate":              true,
	"auth.jwt_secret":                    "",
	"auth.token_lifetime_minutes":        60,
	"review.default_limit":               20,
	"review.max_limit":                   100,
	"review.srs.initial_ease_factor":     0.0,
	"review.srs.min_ease_factor":         0.0,
	"review.srs.max_ease_factor":         0.0,
	"review.srs.correct_ease_bonus":      0.0,
	"review.srs.incorrect_ease_penalty":  0.0,
	"review.srs.first_interval":          0,
	"review.srs.second_interval":         0,
	"review.srs.lapse_interval":          0,
	"review.srs.max_interval_days":       0,
	"llm.enabled":                        false,
	"llm.gemini_api_key":                 "",
	"llm.model_name":                     "gemini-2.0-flash",
	"llm.max_retries":                    3,
	"llm.retry_delay_seconds":            2,
	"llm.requests_per_minute":            30,
	"llm.examples_per_word":              2,
	"llm.generation_timeout_seconds":     5,
	"metrics.enabled":                    true,
	"metrics.path":                       "/metrics",
}

// Load reads configuration from an optional config.yaml (working directory or
// ./config) and from VOCAB_ environment variables, which take precedence.
// The result is validated before it is returned.
func Load() (*Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its validate struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
