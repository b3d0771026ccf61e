package records

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vancomm/minesweeper/internal/database"
)

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const DefaultPath = "local/high_score.csv"

type Options struct {
	Backend string

	// Path is the CSV or SQLite file. Defaults to [DefaultPath].
	Path string

	// DSN is the Postgres URL. When empty the DATABASE_URL and POSTGRES_*
	// environment variables are used.
	DSN string

	// Migrate applies [Migrations] before a Postgres store is opened.
	Migrate bool

	Logger *slog.Logger
}

// Open returns the store selected by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Path == "" {
		opts.Path = DefaultPath
	}

	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Path, opts.Logger)
	case BackendSQLite:
		return OpenSQLite(opts.Path)
	case BackendPostgres:
		if opts.Migrate {
			migrator, err := database.Migrate(opts.DSN, Migrations)
			if err != nil {
				return nil, err
			}
			version, dirty, err := migrator.Version()
			if err != nil {
				opts.Logger.Error("failed to check migration version", slog.Any("error", err))
			} else {
				opts.Logger.Debug("records schema migrated", slog.Uint64("version", uint64(version)), slog.Bool("dirty", dirty))
			}
			migrator.Close()
		}
		pool, err := database.Connect(ctx, opts.DSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresStore(pool), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrBadBackend, opts.Backend)
	}
}
