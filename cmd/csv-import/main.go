// CSV import tool: loads the property assessment CSV into the configured store in batched transactions
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"property-api/internal/config"
	"property-api/internal/ingest"
	"property-api/internal/logger"
	"property-api/internal/migrate"
	"property-api/internal/utils"

	"golang.org/x/term"
)

func main() {
	config.LoadDotEnv()
	l := logger.Setup()
	path := flag.String("file", "", "CSV file to import (default: first argument)")
	flag.Parse()
	if *path == "" {
		*path = flag.Arg(0)
	}
	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: csv-import [-file] <path/to/properties.csv>")
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		l.Error("config_error", "err", err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, l, cfg, *path)
	stop()
	if err != nil {
		l.Error("import_error", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, l *slog.Logger, cfg config.Config, path string) error {
	db, err := utils.OpenFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := migrate.EnsureSchema(db, cfg.DBDriver); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	rc := utils.OpenRedisFromConfig(cfg)
	if rc != nil {
		defer rc.Close()
	}
	lock, err := ingest.AcquireLock(ctx, rc, ingest.DefaultLockKey, cfg.ImportLockTTL)
	if errors.Is(err, ingest.ErrLocked) {
		l.Error("import_locked", "key", ingest.DefaultLockKey)
		return err
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			l.Error("import_unlock_error", "err", err)
		}
	}()

	l.Info("import_begin", "file", path, "driver", cfg.DBDriver, "batch", cfg.ImportBatchSize)
	sum, err := ingest.NewLoader(db, cfg.DBDriver, cfg.ImportBatchSize).ImportFile(ctx, path)
	if err != nil {
		return fmt.Errorf("import %s after %d rows: %w", path, sum.Processed, err)
	}
	l.Info("import_success",
		"processed", sum.Processed,
		"skipped", sum.Skipped,
		"residential", sum.Residential,
		"commercial", sum.Commercial,
		"untyped", sum.Untyped,
		"neighborhoods", sum.Neighborhoods,
		"wards", sum.Wards,
	)
	// interactive runs get a one-line summary; pipelines rely on the log
	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("imported %d rows (%d skipped): %d residential, %d commercial, %d untyped\n",
			sum.Processed, sum.Skipped, sum.Residential, sum.Commercial, sum.Untyped)
	}
	return nil
}
