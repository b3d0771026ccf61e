package mines

import (
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"strings"

	"github.com/zyedidia/generic/mapset"
)

var ErrAlreadyPlaced = errors.New("mines already placed")

// Grid owns every tile of one board. Tiles live in a flat row-major slice
// and the neighbor relation is kept as index lists next to it, so tiles
// never point at each other.
type Grid struct {
	Params
	tiles     []Tile
	neighbors [][]int
	placed    bool
}

func NewGrid(params Params) (*Grid, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	rows, cols, _ := params.Unpack()
	g := &Grid{
		Params:    params,
		tiles:     make([]Tile, rows*cols),
		neighbors: make([][]int, rows*cols),
	}
	for row := range rows {
		for col := range cols {
			i := g.Index(row, col)
			g.tiles[i] = Tile{row: row, col: col}
			g.neighbors[i] = g.adjacentIndices(row, col)
		}
	}
	return g, nil
}

// adjacentIndices lists the axis and diagonal neighbors of row:col that
// fall inside the grid: 3 in a corner, 5 along an edge, 8 elsewhere.
func (g *Grid) adjacentIndices(row, col int) []int {
	indices := make([]int, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if g.InBounds(row+dr, col+dc) {
				indices = append(indices, g.Index(row+dr, col+dc))
			}
		}
	}
	return indices
}

func (g *Grid) Index(row, col int) int {
	return row*g.Cols + col
}

func (g *Grid) Len() int {
	return len(g.tiles)
}

// At returns the tile at index i. It panics if i is out of range.
func (g *Grid) At(i int) *Tile {
	return &g.tiles[i]
}

// Tile returns the tile at row:col, or nil when the position is outside
// the grid.
func (g *Grid) Tile(row, col int) *Tile {
	if !g.InBounds(row, col) {
		return nil
	}
	return &g.tiles[g.Index(row, col)]
}

// Neighbors returns the indices adjacent to i. The slice is shared and
// must not be modified.
func (g *Grid) Neighbors(i int) []int {
	return g.neighbors[i]
}

func (g *Grid) All() iter.Seq2[int, *Tile] {
	return func(yield func(int, *Tile) bool) {
		for i := range g.tiles {
			if !yield(i, &g.tiles[i]) {
				return
			}
		}
	}
}

func (g *Grid) Placed() bool {
	return g.placed
}

// PlaceMines distributes the grid's mines uniformly at random over every
// tile except first and its neighbors. It may only run once per grid.
func (g *Grid) PlaceMines(first int, r *rand.Rand) error {
	if g.placed {
		return ErrAlreadyPlaced
	}

	safe := mapset.New[int]()
	safe.Put(first)
	for _, n := range g.neighbors[first] {
		safe.Put(n)
	}

	candidates := make([]int, 0, len(g.tiles))
	for i := range g.tiles {
		if !safe.Has(i) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) < g.Mines {
		return fmt.Errorf("%w: %d mines do not fit in %d candidate tiles",
			ErrBadParams, g.Mines, len(candidates))
	}

	/*
	 * Partial Fisher-Yates: pick n off the list at random, moving the
	 * last live candidate into each taken slot.
	 */
	k := len(candidates)
	for range g.Mines {
		i := r.IntN(k)
		g.placeMine(candidates[i])
		k--
		candidates[i] = candidates[k]
	}

	g.placed = true
	return nil
}

// placeMine marks tile i as a mine and bumps the count of every neighbor.
// Neighbors that already border other mines simply accumulate.
func (g *Grid) placeMine(i int) {
	g.tiles[i].mine = true
	for _, n := range g.neighbors[i] {
		g.tiles[n].adjacent++
	}
}

// FullyFlagged reports whether tile i has exactly as many flagged
// neighbors as it has adjacent mines.
func (g *Grid) FullyFlagged(i int) bool {
	flags := 0
	for _, n := range g.neighbors[i] {
		if g.tiles[n].flagged {
			flags++
		}
	}
	return flags == g.tiles[i].adjacent
}

func (g *Grid) String() string {
	var b strings.Builder
	for row := range g.Rows {
		for col := range g.Cols {
			t := &g.tiles[g.Index(row, col)]
			var ch string
			switch {
			case t.mine:
				ch = "* "
			case t.adjacent == 0:
				ch = "- "
			default:
				ch = fmt.Sprintf("%d ", t.adjacent)
			}
			b.WriteString(ch)
		}
		b.WriteString("\n")
	}
	return b.String()
}
