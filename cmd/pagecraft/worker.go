// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pagecraft/internal/regen"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued regeneration jobs",
	Long: `Consumes jobs queued by POST /api/regenerate/bulk. Concurrency and
provider call rate come from WORKER_CONCURRENCY and WORKER_RATE_PER_SEC.
Stops cleanly on SIGINT or SIGTERM after in-flight jobs finish.`,
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	w := regen.NewWorker(eng.queue, eng.pipeline, cfg.WorkerConcurrency, cfg.WorkerRatePerSec)
	return w.Run(ctx)
}
