package records

import (
	"cmp"
	"context"
	"errors"
	"fmt"
)

// NoRecord is reported for a board nobody has finished yet. It is also the
// largest value a three digit counter can show.
const NoRecord = 999

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrNotMigrated     = errors.New("highscore table does not exist, run the migrator")
	ErrBadBackend      = errors.New("unknown records backend")
)

// Record is the best time for one board configuration.
type Record struct {
	Rows      int `db:"rows"`
	Cols      int `db:"cols"`
	Mines     int `db:"mines"`
	Highscore int `db:"highscore"`
}

// Matches reports whether r is the slot for the given board. The score
// does not take part.
func (r Record) Matches(rows, cols, mines int) bool {
	return r.Rows == rows && r.Cols == cols && r.Mines == mines
}

func (r Record) String() string {
	return fmt.Sprintf("%dx%d(%d): %d", r.Rows, r.Cols, r.Mines, r.Highscore)
}

// Compare orders records by rows, cols, mines and then score.
func Compare(a, b Record) int {
	return cmp.Or(
		cmp.Compare(a.Rows, b.Rows),
		cmp.Compare(a.Cols, b.Cols),
		cmp.Compare(a.Mines, b.Mines),
		cmp.Compare(a.Highscore, b.Highscore),
	)
}

type Store interface {
	// Lookup returns the best time for the board or [NoRecord].
	Lookup(ctx context.Context, rows, cols, mines int) (int, error)
	// Update stores seconds only when it beats the current best.
	Update(ctx context.Context, rows, cols, mines, seconds int) error
	// All lists every record ordered by [Compare].
	All(ctx context.Context) ([]Record, error)
	Close() error
}
