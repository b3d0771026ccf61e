package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps records in a local SQLite database.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

// OpenSQLite opens or creates the database file at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("unable to create records directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect sqlite db: %w", err)
	}
	s, err := NewSQLiteStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore creates the highscore table in db if it is missing.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS highscore (
	"rows"		INTEGER NOT NULL,
	cols		INTEGER NOT NULL,
	mines		INTEGER NOT NULL,
	highscore	INTEGER NOT NULL,
	PRIMARY KEY ("rows", cols, mines)
);`)
	if err != nil {
		return nil, fmt.Errorf("unable to create highscore table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Lookup(ctx context.Context, rows, cols, mines int) (int, error) {
	var seconds int
	err := s.db.QueryRowContext(ctx,
		`SELECT highscore FROM highscore WHERE "rows" = ? AND cols = ? AND mines = ?;`,
		rows, cols, mines).Scan(&seconds)
	if errors.Is(err, sql.ErrNoRows) {
		return NoRecord, nil
	} else if err != nil {
		return 0, err
	}
	return seconds, nil
}

func (s *SQLiteStore) Update(ctx context.Context, rows, cols, mines, seconds int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
INSERT INTO highscore ("rows", cols, mines, highscore)
VALUES (?, ?, ?, ?)
ON CONFLICT ("rows", cols, mines)
DO UPDATE SET highscore = excluded.highscore
WHERE excluded.highscore < highscore.highscore;`,
		rows, cols, mines, seconds)
	return err
}

func (s *SQLiteStore) All(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT "rows", cols, mines, highscore FROM highscore ORDER BY "rows", cols, mines, highscore;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.Rows, &r.Cols, &r.Mines, &r.Highscore); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
