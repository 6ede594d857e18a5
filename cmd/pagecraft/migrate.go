// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"pagecraft/internal/cache"
	"pagecraft/internal/database"
	"pagecraft/internal/scheduler"
)

var migrateSeed bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Long: `Applies the embedded goose migrations. With --seed, development
taxonomy terms, a CTA and the landing template are inserted when the
database is empty. The page cache is cleared afterwards when Valkey is
reachable.`,
	RunE: runMigrate,
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish due scheduled pages once",
	Long: `Runs the scheduled-publish job a single time, for deployments that
trigger it from an external scheduler instead of serve --scheduler.`,
	RunE: runPublish,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSeed, "seed", false, "insert development seed data")
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(publishCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if migrateSeed {
		if err := database.Seed(db); err != nil {
			return err
		}
	}

	// Any cached page may predate the new schema.
	ctx := cmd.Context()
	valkey, err := cache.ConnectValkey(ctx, cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Warn("page cache not cleared", "error", err)
		return nil
	}
	defer valkey.Close()
	cache.NewPageCache(valkey, cfg.PageCacheTTL).InvalidateAll(ctx)
	return nil
}

func runPublish(cmd *cobra.Command, args []string) error {
	eng, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer eng.Close()

	scheduler.New(eng.content, cfg.SchedulerSpec).RunOnce()
	return nil
}
