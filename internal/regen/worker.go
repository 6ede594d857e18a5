// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package regen

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// pollWait is how long a consumer blocks on an empty queue before checking
// for shutdown.
const pollWait = 5 * time.Second

// jobSource is the consuming side of Queue.
type jobSource interface {
	Dequeue(ctx context.Context, wait time.Duration) (*Job, error)
}

// regenerator is the part of Pipeline the worker drives.
type regenerator interface {
	Regenerate(ctx context.Context, job Job) (*Result, error)
}

// Worker consumes queued jobs with a fixed number of goroutines. Provider
// calls across all goroutines share one token bucket.
type Worker struct {
	source      jobSource
	pipeline    regenerator
	concurrency int
	limiter     *rate.Limiter
}

// NewWorker creates a worker. ratePerSec <= 0 disables throttling.
func NewWorker(source jobSource, pipeline regenerator, concurrency int, ratePerSec float64) *Worker {
	if concurrency < 1 {
		concurrency = 1
	}
	limit := rate.Inf
	if ratePerSec > 0 {
		limit = rate.Limit(ratePerSec)
	}
	return &Worker{
		source:      source,
		pipeline:    pipeline,
		concurrency: concurrency,
		limiter:     rate.NewLimiter(limit, 1),
	}
}

// Run consumes jobs until ctx is cancelled. It returns nil on a clean
// shutdown and the first queue error otherwise.
func (w *Worker) Run(ctx context.Context) error {
	slog.Info("regeneration worker started", "concurrency", w.concurrency, "rate", float64(w.limiter.Limit()))

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		g.Go(func() error {
			return w.consume(ctx, i)
		})
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	slog.Info("regeneration worker stopped")
	return err
}

func (w *Worker) consume(ctx context.Context, id int) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		job, err := w.source.Dequeue(ctx, pollWait)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if job == nil {
			continue
		}

		if err := w.limiter.Wait(ctx); err != nil {
			return err
		}
		w.process(ctx, id, *job)
	}
}

// process runs one job. Failures were already written to the audit log by
// the pipeline; here they are only logged.
func (w *Worker) process(ctx context.Context, id int, job Job) {
	res, err := w.pipeline.Regenerate(ctx, job)
	switch {
	case err != nil:
		queueJobsTotal.WithLabelValues("failed").Inc()
		slog.Error("queued regeneration failed", "worker", id, "page_id", job.PageID, "model", job.Model, "error", err)
	case res.Status == StatusConfirmationRequired:
		queueJobsTotal.WithLabelValues("skipped").Inc()
		slog.Warn("queued regeneration skipped, page has content", "worker", id, "page_id", job.PageID)
	default:
		queueJobsTotal.WithLabelValues("ok").Inc()
		slog.Info("queued regeneration done", "worker", id, "page_id", job.PageID, "model", job.Model)
	}
}
