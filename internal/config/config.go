// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host     string `env:"APP_HOST" envDefault:"0.0.0.0"`
	Port     string `env:"APP_PORT" envDefault:"8080"`
	Env      string `env:"APP_ENV" envDefault:"development"` // "development", "production", "testing"
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// PostgreSQL connection
	DBHost     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	DBPort     string `env:"POSTGRES_PORT" envDefault:"5432"`
	DBUser     string `env:"POSTGRES_USER" envDefault:"pagecraft"`
	DBPassword string `env:"POSTGRES_PASSWORD" envDefault:"changeme"`
	DBName     string `env:"POSTGRES_DB" envDefault:"pagecraft"`

	// Valkey (Redis-compatible cache and job queue)
	ValkeyHost     string        `env:"VALKEY_HOST" envDefault:"localhost"`
	ValkeyPort     string        `env:"VALKEY_PORT" envDefault:"6379"`
	ValkeyPassword string        `env:"VALKEY_PASSWORD"`
	PageCacheTTL   time.Duration `env:"PAGE_CACHE_TTL" envDefault:"5m"`

	// AI provider settings. A provider is registered only when its key is set.
	OpenAIKey         string `env:"OPENAI_API_KEY"`
	OpenAIModel       string `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	ClaudeKey         string `env:"CLAUDE_API_KEY"`
	ClaudeModel       string `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-6"`
	ClaudeBaseURL     string `env:"CLAUDE_BASE_URL" envDefault:"https://api.anthropic.com"`
	GeminiKey         string `env:"GEMINI_API_KEY"`
	GeminiModel       string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-pro"`
	GeminiBaseURL     string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	MistralKey        string `env:"MISTRAL_API_KEY"`
	MistralModel      string `env:"MISTRAL_MODEL" envDefault:"mistral-large-latest"`
	MistralBaseURL    string `env:"MISTRAL_BASE_URL" envDefault:"https://api.mistral.ai/v1"`
	OpenRouterKey     string `env:"OPENROUTER_API_KEY"`
	OpenRouterModel   string `env:"OPENROUTER_MODEL" envDefault:"openai/gpt-4o-mini"`
	OpenRouterBaseURL string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`

	// DefaultModel is the generator used when a regeneration request names none.
	DefaultModel    string        `env:"AI_DEFAULT_MODEL" envDefault:"offline"`
	ProviderTimeout time.Duration `env:"AI_PROVIDER_TIMEOUT" envDefault:"60s"`

	// Regeneration worker
	QueueKey          string  `env:"REGEN_QUEUE_KEY" envDefault:"pagecraft:regen:jobs"`
	WorkerConcurrency int     `env:"WORKER_CONCURRENCY" envDefault:"2"`
	WorkerRatePerSec  float64 `env:"WORKER_RATE_PER_SEC" envDefault:"0.5"`

	// RegenRateLimit caps regeneration requests per client per minute; 0
	// disables the limit.
	RegenRateLimit int `env:"API_REGEN_RATE_LIMIT" envDefault:"30"`

	// SchedulerSpec is the cron expression for scheduled publishing.
	SchedulerSpec string `env:"SCHEDULER_SPEC" envDefault:"* * * * *"`
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. A .env file in the working directory
// is loaded first if present. Returns an error if critical values are
// missing in production mode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}
	if cfg.WorkerConcurrency < 1 {
		return nil, fmt.Errorf("WORKER_CONCURRENCY must be at least 1")
	}
	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("AI_PROVIDER_TIMEOUT must be positive")
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// SlogLevel maps LogLevel to a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
