package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/database"
	"github.com/vancomm/minesweeper/internal/records"
)

func main() {
	logger := config.NewLogger(os.Stderr)

	dsn := pflag.String("dsn", "", "postgres url, defaults to DATABASE_URL or POSTGRES_* variables")
	pflag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	pool, migrator, err := database.ConnectAndMigrate(ctx, *dsn, records.Migrations)
	if err != nil {
		logger.Error("failed to migrate records database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()
	defer migrator.Close()

	version, dirty, err := migrator.Version()
	if err != nil {
		logger.Error("failed to check migration version", slog.Any("error", err))
		return
	}
	logger.Info("migration successful", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))

	store := records.NewPostgresStore(pool)
	all, err := store.All(ctx)
	if err != nil {
		logger.Error("unable to read records", slog.Any("error", err))
		return
	}
	logger.Info("records table ready", slog.Int("records", len(all)))
}
