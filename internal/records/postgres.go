package records

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations holds the schema for [PostgresStore] under migrations/.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// PostgresStore keeps records in the highscore table created by
// [Migrations].
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Lookup(ctx context.Context, rows, cols, mines int) (int, error) {
	res, _ := s.db.Query(ctx,
		`SELECT highscore FROM highscore WHERE "rows" = $1 AND cols = $2 AND mines = $3`,
		rows, cols, mines,
	)
	seconds, err := pgx.CollectExactlyOneRow(res, pgx.RowTo[int])
	if errors.Is(err, pgx.ErrNoRows) {
		return NoRecord, nil
	} else if err != nil {
		return 0, wrapPgError(err)
	}
	return seconds, nil
}

func (s *PostgresStore) Update(ctx context.Context, rows, cols, mines, seconds int) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO highscore ("rows", cols, mines, highscore)
		VALUES (@rows, @cols, @mines, @highscore)
		ON CONFLICT ("rows", cols, mines)
		DO UPDATE SET highscore = excluded.highscore, updated_at = now()
		WHERE highscore.highscore > excluded.highscore`,
		pgx.NamedArgs{
			"rows":      rows,
			"cols":      cols,
			"mines":     mines,
			"highscore": seconds,
		},
	)
	return wrapPgError(err)
}

func (s *PostgresStore) All(ctx context.Context) ([]Record, error) {
	res, _ := s.db.Query(ctx, `
		SELECT "rows", cols, mines, highscore
		FROM highscore
		ORDER BY "rows", cols, mines, highscore`,
	)
	records, err := pgx.CollectRows(res, pgx.RowToStructByName[Record])
	if err != nil {
		return nil, wrapPgError(err)
	}
	return records, nil
}

func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func wrapPgError(err error) error {
	var pgErr *pgconn.PgError
	switch {
	case !errors.As(err, &pgErr):
		return err
	case pgErr.Code == pgerrcode.UndefinedTable:
		return fmt.Errorf("%w: %w", ErrNotMigrated, err)
	case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
		return fmt.Errorf("%w: %w", ErrMalformedRecord, err)
	}
	return err
}
