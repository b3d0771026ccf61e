package mines

// Point addresses a tile by row and column.
type Point struct {
	Row, Col int
}

// Tile is a single cell of the grid. Its position never changes; the mine
// and the adjacent count are set once during placement, and the flag and
// shown bits follow the player's actions.
type Tile struct {
	row, col int
	mine     bool
	flagged  bool
	shown    bool
	adjacent int
}

func (t *Tile) Point() Point { return Point{t.row, t.col} }
func (t *Tile) Mine() bool { return t.mine }
func (t *Tile) Flagged() bool { return t.flagged }
func (t *Tile) Shown() bool { return t.shown }
func (t *Tile) Adjacent() int { return t.adjacent }

// ToggleFlag flips the flag on a concealed tile and returns the change in
// the number of mines the player still has to mark: -1 when the tile
// became flagged, +1 when it was unflagged. Shown tiles cannot be flagged.
func (t *Tile) ToggleFlag() int {
	if t.shown {
		return 0
	}
	t.flagged = !t.flagged
	if t.flagged {
		return -1
	}
	return 1
}

func (t *Tile) show() {
	t.shown = true
}
