package mines

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	m.Run()
}

type recordKey struct{ rows, cols, mines int }

type memRecords struct {
	best    map[recordKey]int
	updates int
	err     error
}

func newMemRecords() *memRecords {
	return &memRecords{best: make(map[recordKey]int)}
}

func (m *memRecords) Lookup(ctx context.Context, rows, cols, mines int) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	best, ok := m.best[recordKey{rows, cols, mines}]
	if !ok {
		return MaxSeconds, nil
	}
	return best, nil
}

func (m *memRecords) Update(ctx context.Context, rows, cols, mines, seconds int) error {
	if m.err != nil {
		return m.err
	}
	m.updates++
	k := recordKey{rows, cols, mines}
	if best, ok := m.best[k]; !ok || seconds < best {
		m.best[k] = seconds
	}
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

// newRiggedGame starts a game whose mines sit at fixed positions.
func newRiggedGame(t *testing.T, rows, cols int, mines []Point, opts ...Option) *Game {
	t.Helper()
	params := Params{Rows: rows, Cols: cols, Mines: len(mines)}
	g, err := NewGame(context.Background(), params, opts...)
	require.NoError(t, err)
	g.grid = newTestGrid(t, rows, cols, mines...)
	g.state = InProgress
	g.startedAt = g.opts.now()
	return g
}

func TestNewGameRejectsBadParams(t *testing.T) {
	g, err := NewGame(context.Background(), Params{Rows: 3, Cols: 3, Mines: 1})
	assert.ErrorIs(t, err, ErrBadParams)
	assert.Nil(t, g)
}

func TestNewGame(t *testing.T) {
	g, err := NewGame(context.Background(), Params{Rows: 16, Cols: 30, Mines: 99})
	require.NoError(t, err)

	assert.Equal(t, NotStarted, g.State())
	assert.Equal(t, 99, g.MinesLeft())
	assert.Equal(t, 16*30-99, g.Hidden())
	assert.Equal(t, MaxSeconds, g.Best())
	assert.Equal(t, 0, g.Elapsed())
	assert.False(t, g.grid.Placed(), "mines are placed on the first reveal")
	for _, c := range g.Cells() {
		assert.Equal(t, Unknown, c)
	}
}

func TestEmptyBoardWinsInOneClick(t *testing.T) {
	records := newMemRecords()
	g, err := NewGame(context.Background(), Params{Rows: 3, Cols: 3, Mines: 0},
		WithRecords(records))
	require.NoError(t, err)

	outcome, err := g.Reveal(context.Background(), 0, 0)
	require.NoError(t, err)

	assert.Equal(t, 9, outcome.Uncovered)
	assert.Equal(t, Won, g.State())
	assert.Equal(t, 0, g.Hidden())
	assert.Equal(t, 0, g.Best())
	assert.Equal(t, 0, records.best[recordKey{3, 3, 0}])
}

func TestFirstRevealIsSafe(t *testing.T) {
	params := Params{Rows: 9, Cols: 9, Mines: 72}
	for seed := range uint64(50) {
		g, err := NewGame(context.Background(), params,
			WithRand(rand.New(rand.NewPCG(seed, 1))))
		require.NoError(t, err)

		outcome, err := g.Reveal(context.Background(), 4, 4)
		require.NoError(t, err)

		assert.False(t, outcome.HitMine)
		assert.Equal(t, 9, outcome.Uncovered, "the safe zone holds every free tile")
		assert.Equal(t, Won, g.State())
		for _, p := range []Point{{3, 3}, {3, 4}, {3, 5}, {4, 3}, {4, 5}, {5, 3}, {5, 4}, {5, 5}} {
			tile, ok := g.Tile(p.Row, p.Col)
			require.True(t, ok)
			assert.False(t, tile.Mine())
		}
	}
}

func TestOutOfBounds(t *testing.T) {
	g, err := NewGame(context.Background(), Params{Rows: 5, Cols: 5, Mines: 3})
	require.NoError(t, err)

	_, err = g.Reveal(context.Background(), 5, 0)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = g.Chord(context.Background(), 0, -1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = g.ToggleFlag(-1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	assert.Equal(t, NotStarted, g.State())
}

func TestActionsBeforeFirstReveal(t *testing.T) {
	g, err := NewGame(context.Background(), Params{Rows: 5, Cols: 5, Mines: 3})
	require.NoError(t, err)

	delta, err := g.ToggleFlag(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, delta)

	outcome, err := g.Chord(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, outcome.Empty())

	assert.Equal(t, NotStarted, g.State())
	assert.Equal(t, 3, g.MinesLeft())
}

func TestFlagCounter(t *testing.T) {
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}, {0, 2}})

	delta, err := g.ToggleFlag(0, 0)
	require.NoError(t, err)
	assert.Equal(t, -1, delta)
	assert.Equal(t, 1, g.MinesLeft())

	g.ToggleFlag(3, 3)
	g.ToggleFlag(4, 4)
	assert.Equal(t, -1, g.MinesLeft(), "over-flagging goes negative")

	delta, _ = g.ToggleFlag(4, 4)
	assert.Equal(t, 1, delta)
	assert.Equal(t, 0, g.MinesLeft())

	g.Reveal(context.Background(), 1, 1)
	delta, _ = g.ToggleFlag(1, 1)
	assert.Equal(t, 0, delta, "shown tiles cannot be flagged")
	assert.Equal(t, 0, g.MinesLeft())
}

func TestLoss(t *testing.T) {
	clock := newFakeClock()
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}, {0, 2}}, WithClock(clock.now))
	g.ToggleFlag(4, 4)

	clock.advance(12 * time.Second)
	outcome, err := g.Reveal(context.Background(), 0, 2)
	require.NoError(t, err)

	assert.True(t, outcome.HitMine)
	assert.Equal(t, Lost, g.State())
	assert.Equal(t, []Point{{0, 2}}, g.Detonated())
	assert.Equal(t, Point{0, 2}, g.Trigger())

	clock.advance(time.Minute)
	assert.Equal(t, 12, g.Elapsed(), "clock stops when the game ends")

	cells := g.Cells()
	assert.Equal(t, ExplodedMine, cells[g.grid.Index(0, 2)])
	assert.Equal(t, UnflaggedMine, cells[g.grid.Index(0, 0)])
	assert.Equal(t, FalselyFlagged, cells[g.grid.Index(4, 4)])
	assert.Equal(t, Unknown, cells[g.grid.Index(2, 2)])
}

func TestTerminalStatesIgnoreActions(t *testing.T) {
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}})
	g.Reveal(context.Background(), 0, 0)
	require.Equal(t, Lost, g.State())

	outcome, err := g.Reveal(context.Background(), 4, 4)
	require.NoError(t, err)
	assert.True(t, outcome.Empty())

	delta, err := g.ToggleFlag(4, 4)
	require.NoError(t, err)
	assert.Equal(t, 0, delta)

	tile, _ := g.Tile(4, 4)
	assert.False(t, tile.Shown())
	assert.False(t, tile.Flagged())
	assert.Equal(t, Lost, g.State())
}

func TestChordWins(t *testing.T) {
	records := newMemRecords()
	clock := newFakeClock()
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}, {0, 2}},
		WithRecords(records), WithClock(clock.now))

	g.Reveal(context.Background(), 1, 1)
	g.ToggleFlag(0, 0)

	outcome, err := g.Chord(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, outcome.Empty())
	assert.Equal(t, InProgress, g.State())

	g.ToggleFlag(0, 2)
	clock.advance(42 * time.Second)
	outcome, err = g.Chord(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.Equal(t, 22, outcome.Uncovered)
	assert.Equal(t, Won, g.State())
	assert.Equal(t, 42, g.Best())
	assert.Equal(t, 42, records.best[recordKey{5, 5, 2}])

	for _, c := range []Point{{0, 0}, {0, 2}} {
		assert.Equal(t, CorrectlyFlagged, g.Cells()[g.grid.Index(c.Row, c.Col)])
	}
}

func TestChordWithWrongFlagLoses(t *testing.T) {
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}, {0, 2}})
	g.Reveal(context.Background(), 1, 1)
	g.ToggleFlag(0, 1)
	g.ToggleFlag(1, 0)

	outcome, err := g.Chord(context.Background(), 1, 1)
	require.NoError(t, err)

	assert.True(t, outcome.HitMine)
	assert.Equal(t, Lost, g.State())
	assert.Equal(t, []Point{{0, 0}, {0, 2}}, g.Detonated())
	assert.Equal(t, Point{1, 1}, g.Trigger())

	cells := g.Cells()
	assert.Equal(t, ExplodedMine, cells[g.grid.Index(0, 0)])
	assert.Equal(t, ExplodedMine, cells[g.grid.Index(0, 2)])
	assert.Equal(t, FalselyFlagged, cells[g.grid.Index(0, 1)])
}

func TestBestTimeOnlyImproves(t *testing.T) {
	records := newMemRecords()
	records.best[recordKey{5, 5, 1}] = 30
	clock := newFakeClock()

	g := newRiggedGame(t, 5, 5, []Point{{4, 4}}, WithRecords(records), WithClock(clock.now))
	assert.Equal(t, 30, g.Best())

	clock.advance(50 * time.Second)
	g.Reveal(context.Background(), 0, 0)
	require.Equal(t, Won, g.State())
	assert.Equal(t, 30, g.Best())
	assert.Equal(t, 0, records.updates)

	g, err := g.Reset(context.Background())
	require.NoError(t, err)
	g.grid = newTestGrid(t, 5, 5, Point{4, 4})
	g.state = InProgress
	g.startedAt = clock.now()

	clock.advance(20 * time.Second)
	g.Reveal(context.Background(), 0, 0)
	require.Equal(t, Won, g.State())
	assert.Equal(t, 20, g.Best())
	assert.Equal(t, 20, records.best[recordKey{5, 5, 1}])
}

func TestRecordsFailure(t *testing.T) {
	records := newMemRecords()
	records.err = errors.New("disk on fire")

	g, err := NewGame(context.Background(), Params{Rows: 3, Cols: 3, Mines: 0},
		WithRecords(records))
	require.NoError(t, err, "an unreadable store is not fatal")
	assert.Equal(t, MaxSeconds, g.Best())

	_, err = g.Reveal(context.Background(), 1, 1)
	assert.ErrorIs(t, err, records.err)
	assert.Equal(t, Won, g.State())
}

func TestElapsedIsCapped(t *testing.T) {
	clock := newFakeClock()
	g, err := NewGame(context.Background(), Params{Rows: 9, Cols: 9, Mines: 10},
		WithClock(clock.now))
	require.NoError(t, err)

	clock.advance(time.Hour)
	assert.Equal(t, 0, g.Elapsed(), "clock starts on the first reveal")

	g = newRiggedGame(t, 5, 5, []Point{{0, 0}}, WithClock(clock.now))
	clock.advance(1500 * time.Millisecond)
	assert.Equal(t, 1, g.Elapsed())

	clock.advance(time.Hour)
	assert.Equal(t, MaxSeconds, g.Elapsed())
}

func TestUncoveredNeverExceedsNonMines(t *testing.T) {
	params := Params{Rows: 9, Cols: 9, Mines: 10}
	r := rand.New(rand.NewPCG(3, 4))
	for range 20 {
		g, err := NewGame(context.Background(), params, WithRand(r))
		require.NoError(t, err)

		total := 0
		for !g.State().Over() {
			outcome, err := g.Reveal(context.Background(), r.IntN(9), r.IntN(9))
			require.NoError(t, err)
			total += outcome.Uncovered
			require.LessOrEqual(t, total, params.NonMines())
			require.Equal(t, params.NonMines()-total, g.Hidden())
			if outcome.HitMine {
				require.Equal(t, Lost, g.State())
			} else if g.Hidden() == 0 {
				require.Equal(t, Won, g.State())
			}
		}
	}
}

func TestReset(t *testing.T) {
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}})
	g.Reveal(context.Background(), 0, 0)

	fresh, err := g.Reset(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, g.ID(), fresh.ID())
	assert.Equal(t, g.Params(), fresh.Params())
	assert.Equal(t, NotStarted, fresh.State())
	assert.Equal(t, Lost, g.State())
}

func TestElapsedIgnoresClockGoingBack(t *testing.T) {
	clock := newFakeClock()
	g := newRiggedGame(t, 5, 5, []Point{{0, 0}}, WithClock(clock.now))

	clock.advance(-time.Minute)
	assert.Equal(t, 0, g.Elapsed())
}
