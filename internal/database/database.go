package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vancomm/minesweeper/internal/config"
)

// Connect opens a pool for url, or for the environment settings when url
// is empty.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	var (
		cfg *pgxpool.Config
		err error
	)
	if url != "" {
		cfg, err = pgxpool.ParseConfig(url)
	} else {
		cfg, err = config.NewPgxpoolConfig()
	}
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return pool, nil
}

// Migrate applies every migration found under migrations/ in fsys.
func Migrate(url string, fsys fs.FS) (*migrate.Migrate, error) {
	if url == "" {
		var err error
		if url, err = config.DbURL(); err != nil {
			return nil, err
		}
	}
	source, err := iofs.New(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("unable to create migrations iofs: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create migrator: %w", err)
	}
	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		migrator.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return migrator, nil
}

func ConnectAndMigrate(ctx context.Context, url string, fsys fs.FS) (*pgxpool.Pool, *migrate.Migrate, error) {
	migrator, err := Migrate(url, fsys)
	if err != nil {
		return nil, nil, err
	}
	pool, err := Connect(ctx, url)
	if err != nil {
		migrator.Close()
		return nil, nil, err
	}
	return pool, migrator, nil
}
