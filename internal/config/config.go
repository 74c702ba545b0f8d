package config

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Review   ReviewConfig   `mapstructure:"review" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	RequestTimeoutSeconds  int    `mapstructure:"request_timeout_seconds" validate:"gte=1"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL                    string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0,ltefield=MaxOpenConns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains the settings for verifying bearer tokens issued by the
// external authentication service.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gte=1"`
}

// ReviewConfig contains review scheduling settings.
type ReviewConfig struct {
	DefaultLimit int       `mapstructure:"default_limit" validate:"gte=1,ltefield=MaxLimit"`
	MaxLimit     int       `mapstructure:"max_limit" validate:"gte=1"`
	SRS          SRSConfig `mapstructure:"srs"`
}

// SRSConfig overrides the scheduling algorithm's parameters. Zero values keep
// the algorithm defaults.
type SRSConfig struct {
	InitialEaseFactor    float64 `mapstructure:"initial_ease_factor" validate:"gte=0"`
	MinEaseFactor        float64 `mapstructure:"min_ease_factor" validate:"gte=0"`
	MaxEaseFactor        float64 `mapstructure:"max_ease_factor" validate:"gte=0"`
	CorrectEaseBonus     float64 `mapstructure:"correct_ease_bonus" validate:"gte=0"`
	IncorrectEasePenalty float64 `mapstructure:"incorrect_ease_penalty" validate:"gte=0"`
	FirstInterval        int     `mapstructure:"first_interval" validate:"gte=0"`
	SecondInterval       int     `mapstructure:"second_interval" validate:"gte=0"`
	LapseInterval        int     `mapstructure:"lapse_interval" validate:"gte=0"`
	MaxIntervalDays      int     `mapstructure:"max_interval_days" validate:"gte=0"`
}

// LLMConfig contains the settings of the optional example sentence generator.
type LLMConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required_if=Enabled true"`
	ModelName         string `mapstructure:"model_name" validate:"required_if=Enabled true"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
	RequestsPerMinute int    `mapstructure:"requests_per_minute" validate:"gte=1"`
	ExamplesPerWord   int    `mapstructure:"examples_per_word" validate:"gte=1,lte=5"`
	// Budget for generating the missing examples of one review request.
	GenerationTimeoutSeconds int `mapstructure:"generation_timeout_seconds" validate:"gte=1,lte=20"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"omitempty,startswith=/"`
}
