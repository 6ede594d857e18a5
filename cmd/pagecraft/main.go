// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for pagecraft. The serve command runs
// the HTTP API and the publish scheduler, worker consumes queued
// regeneration jobs, migrate applies schema migrations and publish runs
// the scheduled-publish job once.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"pagecraft/internal/ai"
	"pagecraft/internal/cache"
	"pagecraft/internal/config"
	"pagecraft/internal/content"
	"pagecraft/internal/database"
	"pagecraft/internal/regen"
)

// cfg is loaded once before any subcommand runs.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "pagecraft",
	Short:         "Headless SEO CMS page content engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = c
		setupLogger(c)
		slog.Info("configuration loaded", "env", cfg.Env, "command", cmd.Name())
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger installs the process-wide logger: text in development, JSON
// otherwise.
func setupLogger(c *config.Config) {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	var handler slog.Handler
	if c.IsDev() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// engine bundles the services shared by serve and worker.
type engine struct {
	db         *sql.DB
	valkey     *redis.Client
	content    *content.Service
	pageCache  *cache.PageCache
	generators *regen.Generators
	pipeline   *regen.Pipeline
	queue      *regen.Queue
}

// openEngine connects to PostgreSQL and Valkey and wires the content
// service, page cache and regeneration pipeline.
func openEngine(ctx context.Context) (*engine, error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, err
	}

	valkey, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		db.Close()
		return nil, err
	}

	pageCache := cache.NewPageCache(valkey, cfg.PageCacheTTL)
	svc := content.NewService(db)
	svc.SetInvalidator(pageCache)

	registry := ai.NewRegistry(map[string]ai.ProviderConfig{
		"openai":     {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL},
		"gemini":     {APIKey: cfg.GeminiKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL},
		"claude":     {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL},
		"mistral":    {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL},
		"openrouter": {APIKey: cfg.OpenRouterKey, Model: cfg.OpenRouterModel, BaseURL: cfg.OpenRouterBaseURL},
	})
	generators := regen.NewGenerators(registry)
	if _, err := generators.Lookup(cfg.DefaultModel); err != nil {
		valkey.Close()
		db.Close()
		return nil, fmt.Errorf("AI_DEFAULT_MODEL: %w", err)
	}
	slog.Info("generators initialized", "available", generators.Available(), "default", cfg.DefaultModel)

	pipeline := regen.NewPipeline(svc, generators, cfg.DefaultModel, cfg.ProviderTimeout)
	pipeline.SetModerator(registry)

	return &engine{
		db:         db,
		valkey:     valkey,
		content:    svc,
		pageCache:  pageCache,
		generators: generators,
		pipeline:   pipeline,
		queue:      regen.NewQueue(valkey, cfg.QueueKey),
	}, nil
}

func (e *engine) Close() {
	if err := e.valkey.Close(); err != nil {
		slog.Warn("valkey close", "error", err)
	}
	if err := e.db.Close(); err != nil {
		slog.Warn("database close", "error", err)
	}
}
