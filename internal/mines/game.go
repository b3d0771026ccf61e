package mines

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
)

// MaxSeconds caps the game clock; it is also the best time reported when
// no record exists.
const MaxSeconds = 999

// Records persists the best time per board configuration.
type Records interface {
	Lookup(ctx context.Context, rows, cols, mines int) (int, error)
	Update(ctx context.Context, rows, cols, mines, seconds int) error
}

type options struct {
	rnd     *rand.Rand
	now     func() time.Time
	records Records
	logger  *slog.Logger
}

type Option func(*options)

func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rnd = r }
}

func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithRecords(r Records) Option {
	return func(o *options) { o.records = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Game drives one board from the first reveal to a win or a loss.
type Game struct {
	id        uuid.UUID
	grid      *Grid
	state     State
	hidden    int // non-mine tiles still concealed
	minesLeft int // mines minus flags placed
	best      int
	startedAt time.Time
	endedAt   time.Time
	detonated []Point
	trigger   Point

	opts    options
	optList []Option
	logger  *slog.Logger
}

// NewGame validates params and builds an unstarted game. Mines are placed
// on the first reveal so that the revealed tile and its neighbors are
// always safe.
func NewGame(ctx context.Context, params Params, opts ...Option) (*Game, error) {
	grid, err := NewGrid(params)
	if err != nil {
		return nil, err
	}

	o := options{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		o.rnd = NewRand(0)
	}

	id := uuid.New()
	g := &Game{
		id:        id,
		grid:      grid,
		state:     NotStarted,
		hidden:    params.NonMines(),
		minesLeft: params.Mines,
		best:      MaxSeconds,
		opts:      o,
		optList:   opts,
		logger:    o.logger.With(slog.String("game", id.String())),
	}

	if o.records != nil {
		best, err := o.records.Lookup(ctx, params.Rows, params.Cols, params.Mines)
		if err != nil {
			g.logger.Warn("unable to look up best time", slog.Any("error", err))
		} else {
			g.best = best
		}
	}

	g.logger.Debug("new game",
		slog.Int("rows", params.Rows),
		slog.Int("cols", params.Cols),
		slog.Int("mines", params.Mines),
		slog.Int("best", g.best),
	)
	return g, nil
}

// Reset discards g and returns a fresh game with the same params and
// options.
func (g *Game) Reset(ctx context.Context) (*Game, error) {
	return NewGame(ctx, g.grid.Params, g.optList...)
}

func (g *Game) ID() uuid.UUID { return g.id }
func (g *Game) Params() Params { return g.grid.Params }
func (g *Game) State() State { return g.state }
func (g *Game) MinesLeft() int { return g.minesLeft }
func (g *Game) Hidden() int { return g.hidden }
func (g *Game) Best() int { return g.best }
func (g *Game) Trigger() Point { return g.trigger }
func (g *Game) Detonated() []Point { return slices.Clone(g.detonated) }

// Tile returns a copy of the tile at row:col.
func (g *Game) Tile(row, col int) (Tile, bool) {
	t := g.grid.Tile(row, col)
	if t == nil {
		return Tile{}, false
	}
	return *t, true
}

// Elapsed returns the whole seconds since the first reveal, frozen once
// the game is over and capped at [MaxSeconds].
func (g *Game) Elapsed() int {
	var d time.Duration
	switch {
	case g.state == NotStarted:
		return 0
	case g.state.Over():
		d = g.endedAt.Sub(g.startedAt)
	default:
		d = g.opts.now().Sub(g.startedAt)
	}
	return min(max(0, int(d/time.Second)), MaxSeconds)
}

func (g *Game) index(row, col int) (int, error) {
	if !g.grid.InBounds(row, col) {
		return 0, fmt.Errorf("%w: %d:%d on %s", ErrOutOfBounds, row, col, g.grid.Params)
	}
	return g.grid.Index(row, col), nil
}

// Reveal uncovers the tile at row:col, cascading through zero tiles. The
// first reveal of a game places the mines and starts the clock.
func (g *Game) Reveal(ctx context.Context, row, col int) (Outcome, error) {
	return g.act(ctx, row, col, false)
}

// Chord reveals every unflagged neighbor of a shown tile whose flag count
// matches its number. Anything else is a no-op.
func (g *Game) Chord(ctx context.Context, row, col int) (Outcome, error) {
	return g.act(ctx, row, col, true)
}

func (g *Game) act(ctx context.Context, row, col int, chord bool) (Outcome, error) {
	i, err := g.index(row, col)
	if err != nil {
		return emptyOutcome(), err
	}
	if g.state.Over() {
		return emptyOutcome(), nil
	}
	if g.state == NotStarted {
		if chord {
			return emptyOutcome(), nil
		}
		if err := g.start(i); err != nil {
			return emptyOutcome(), err
		}
	}

	outcome := g.grid.Reveal(i, chord)
	g.hidden -= outcome.Uncovered

	switch {
	case outcome.HitMine:
		g.lose(outcome.Detonated, Point{row, col})
	case g.hidden == 0:
		if err := g.win(ctx); err != nil {
			return outcome, err
		}
	}
	return outcome, nil
}

// ToggleFlag flips the flag at row:col and returns the change applied to
// [Game.MinesLeft]. Flags can only be placed while the game is running.
func (g *Game) ToggleFlag(row, col int) (int, error) {
	i, err := g.index(row, col)
	if err != nil {
		return 0, err
	}
	if g.state != InProgress {
		return 0, nil
	}
	delta := g.grid.At(i).ToggleFlag()
	g.minesLeft += delta
	return delta, nil
}

func (g *Game) start(first int) error {
	if err := g.grid.PlaceMines(first, g.opts.rnd); err != nil {
		return fmt.Errorf("unable to place mines: %w", err)
	}
	g.state = InProgress
	g.startedAt = g.opts.now()
	g.logger.Debug("game started", slog.Any("first", g.grid.At(first).Point()))
	return nil
}

func (g *Game) lose(detonated []Point, trigger Point) {
	g.state = Lost
	g.endedAt = g.opts.now()
	g.detonated = detonated
	g.trigger = trigger
	g.logger.Debug("game lost",
		slog.Any("trigger", trigger),
		slog.Any("detonated", detonated),
		slog.Int("seconds", g.Elapsed()),
	)
}

func (g *Game) win(ctx context.Context) error {
	g.state = Won
	g.endedAt = g.opts.now()

	seconds := g.Elapsed()
	g.logger.Debug("game won", slog.Int("seconds", seconds), slog.Int("best", g.best))
	if seconds >= g.best {
		return nil
	}

	g.logger.Info("new best time", slog.Int("seconds", seconds), slog.Int("previous", g.best))
	g.best = seconds
	if g.opts.records == nil {
		return nil
	}
	p := g.grid.Params
	if err := g.opts.records.Update(ctx, p.Rows, p.Cols, p.Mines, seconds); err != nil {
		return fmt.Errorf("unable to save best time: %w", err)
	}
	return nil
}

// Cells returns what a renderer should draw for every tile, row-major.
func (g *Game) Cells() Cells {
	cells := make(Cells, g.grid.Len())
	for i, t := range g.grid.All() {
		cells[i] = g.cellState(t)
	}
	return cells
}

func (g *Game) cellState(t *Tile) CellState {
	switch {
	case g.state == Lost && t.mine && t.flagged:
		return CorrectlyFlagged
	case g.state == Lost && t.mine && slices.Contains(g.detonated, t.Point()):
		return ExplodedMine
	case g.state == Lost && t.mine:
		return UnflaggedMine
	case g.state == Lost && t.flagged:
		return FalselyFlagged
	case g.state == Won && t.mine:
		return CorrectlyFlagged
	case t.flagged:
		return Flagged
	case t.shown:
		return CellState(t.adjacent)
	default:
		return Unknown
	}
}

func (g *Game) String() string {
	return g.Cells().ToString(g.grid.Cols)
}
