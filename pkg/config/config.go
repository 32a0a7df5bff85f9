package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
)

var (
	ErrMissingSecretKey   = errors.New("SECRET_KEY must be set")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL must be set")
)

type Config struct {
	Env  string `env:"APP_ENV" env-default:"dev"`
	Port string `env:"PORT" env-default:"8000"`

	DatabaseURL string `env:"DATABASE_URL" env-required:"true"`

	SecretKey                string `env:"SECRET_KEY" env-required:"true"`
	AccessTokenExpireMinutes int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES" env-default:"30"`
	BcryptCost               int    `env:"BCRYPT_COST" env-default:"10"`

	LLM LLM

	UploadDir      string `env:"UPLOAD_DIR"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES" env-default:"15728640"`
}

type LLM struct {
	Provider string        `env:"LLM_PROVIDER" env-default:"gemini"`
	Timeout  time.Duration `env:"LLM_TIMEOUT" env-default:"60s"`

	GeminiAPIKey  string `env:"GEMINI_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" env-default:"gemini-2.5-flash"`
	GeminiBaseURL string `env:"GEMINI_BASE_URL"`

	OpenRouterAPIKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL  string `env:"OPENROUTER_BASE_URL" env-default:"https://openrouter.ai/api/v1"`
	OpenRouterModel    string `env:"OPENROUTER_MODEL" env-default:"qwen/qwen2.5-32b-instruct"`
	OpenRouterAppTitle string `env:"OPENROUTER_APP_TITLE" env-default:"docqa"`
	OpenRouterReferer  string `env:"OPENROUTER_REFERER"`
}

// AccessTokenTTL is the lifetime of issued access tokens.
func (c Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// Load reads environment variables, optionally from a .env file if present.
func Load() (Config, error) {
	// Try to load .env if it exists; ignore error if file not found
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot: variables that are set but blank,
// and ranges.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SecretKey) == "" {
		return ErrMissingSecretKey
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return ErrMissingDatabaseURL
	}
	if c.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", c.AccessTokenExpireMinutes)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", ProviderGemini, ProviderOpenRouter, c.LLM.Provider)
	}
	return nil
}
