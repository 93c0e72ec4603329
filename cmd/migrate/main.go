package main

// Create or upgrade the profile cache schema:
//   go run ./cmd/migrate

import (
	"context"
	"os"

	"shopping-buddy/internal/shared/config"
	"shopping-buddy/internal/shared/storage/db"
	"shopping-buddy/internal/shared/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"error": err})
		os.Exit(1)
	}
	ctx := context.Background()

	driver, err := db.DriverFor(cfg.CacheDriver)
	if err != nil {
		telemetry.Error("migrate.unsupported_driver", map[string]any{"driver": cfg.CacheDriver, "error": err})
		os.Exit(1)
	}

	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())
	sqlDB, err := db.Connect(ctx, driver, cfg.CacheDSN, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err})
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := db.RunMigrations(ctx, sqlDB, driver); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		sqlDB.Close()
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"driver": driver})
}
