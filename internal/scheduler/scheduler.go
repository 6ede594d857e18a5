// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler publishes scheduled pages whose publish time has come.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the publish job every minute.
const DefaultSpec = "* * * * *"

// Publisher publishes every scheduled page due at now that passes the
// publish gate and returns the ids it published.
type Publisher interface {
	PublishDue(ctx context.Context, now time.Time) ([]uuid.UUID, error)
}

// Scheduler runs the publish job on a cron schedule.
type Scheduler struct {
	publisher Publisher
	cron      *cron.Cron
	spec      string
	timeout   time.Duration
	now       func() time.Time
}

// New creates a scheduler. An empty spec selects DefaultSpec.
func New(publisher Publisher, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{
		publisher: publisher,
		cron:      cron.New(),
		spec:      spec,
		timeout:   30 * time.Second,
		now:       time.Now,
	}
}

// Start registers the publish job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("schedule publish job %q: %w", s.spec, err)
	}
	s.cron.Start()
	slog.Info("scheduler started", "spec", s.spec, "jobs", len(s.cron.Entries()))
	return nil
}

// Stop waits for a running job to finish and stops the runner.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("scheduler stopped")
}

// RunOnce publishes due pages once. Pages refused by the publish gate stay
// scheduled and are retried on the next run.
func (s *Scheduler) RunOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	now := s.now()
	published, err := s.publisher.PublishDue(ctx, now)
	if err != nil {
		slog.Error("failed to process scheduled pages", "error", err)
		return
	}
	if len(published) > 0 {
		slog.Info("published scheduled pages", "count", len(published), "at", now.Format(time.RFC3339))
	}
}
