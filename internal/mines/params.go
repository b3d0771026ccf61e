package mines

import (
	"fmt"
)

// SafeZone is the largest number of tiles the first reveal can exclude
// from mine placement: the clicked tile and its eight neighbors.
const SafeZone = 9

// MaxTiles bounds rows*cols.
const MaxTiles = 1 << 20

type Params struct {
	Rows, Cols, Mines int
}

func (p Params) Unpack() (rows, cols, mines int) {
	return p.Rows, p.Cols, p.Mines
}

// Validate reports a configuration error when the board cannot hold the
// requested mines outside of a full safe zone.
func (p Params) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: rows and cols must be positive (rows = %d, cols = %d)",
			ErrBadParams, p.Rows, p.Cols)
	}
	if p.Mines < 0 {
		return fmt.Errorf("%w: mine count must not be negative (mines = %d)",
			ErrBadParams, p.Mines)
	}
	if p.Rows > MaxTiles/p.Cols {
		return fmt.Errorf("%w: board must not exceed %d tiles (rows = %d, cols = %d)",
			ErrBadParams, MaxTiles, p.Rows, p.Cols)
	}
	if p.Mines > p.Rows*p.Cols-SafeZone {
		return fmt.Errorf("%w: rows*cols must be at least %d greater than mines (%dx%d, %d mines)",
			ErrBadParams, SafeZone, p.Rows, p.Cols, p.Mines)
	}
	return nil
}

func (p Params) InBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

// NonMines is the number of tiles a player has to reveal to win.
func (p Params) NonMines() int {
	return p.Rows*p.Cols - p.Mines
}

func (p Params) String() string {
	return fmt.Sprintf("%dx%d(%d)", p.Rows, p.Cols, p.Mines)
}
