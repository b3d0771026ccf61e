package mines

import (
	"slices"

	"github.com/gammazero/deque"
	"github.com/zyedidia/generic/mapset"
)

// Outcome accumulates the effect of one reveal action.
type Outcome struct {
	Uncovered int     // non-mine tiles that became shown
	HitMine   bool    // a concealed mine was revealed
	Detonated []Point // the mines that were revealed, in processing order
}

// Merge combines two outcomes: counts add up, the mine bit is or-ed and
// the detonated tiles are concatenated. The zero Outcome is its identity.
func Merge(a, b Outcome) Outcome {
	return Outcome{
		Uncovered: a.Uncovered + b.Uncovered,
		HitMine:   a.HitMine || b.HitMine,
		Detonated: slices.Concat(a.Detonated, b.Detonated),
	}
}

func (o Outcome) Empty() bool {
	return o.Uncovered == 0 && !o.HitMine && len(o.Detonated) == 0
}

func emptyOutcome() Outcome {
	return Outcome{}
}

func mineOutcome(p Point) Outcome {
	return Outcome{HitMine: true, Detonated: []Point{p}}
}

func shownOutcome() Outcome {
	return Outcome{Uncovered: 1}
}

// revealOne applies a single reveal step to tile i and returns its outcome
// together with the tiles that have to be revealed next.
func (g *Grid) revealOne(i int, chord bool) (Outcome, []int) {
	t := &g.tiles[i]
	switch {
	case t.flagged:
		return emptyOutcome(), nil
	case t.shown:
		if chord && g.FullyFlagged(i) {
			return emptyOutcome(), g.neighbors[i]
		}
		return emptyOutcome(), nil
	case chord:
		// only a shown anchor can be chorded
		return emptyOutcome(), nil
	case t.mine:
		// the mine stays concealed; the caller decides what to show
		return mineOutcome(t.Point()), nil
	}

	t.show()
	if t.adjacent == 0 {
		return shownOutcome(), g.neighbors[i]
	}
	return shownOutcome(), nil
}

// Reveal runs a breadth-first reveal starting at tile start. Only the
// starting tile may be treated as a chord; every cascaded tile is a plain
// reveal. Each tile is queued at most once per call.
func (g *Grid) Reveal(start int, chord bool) Outcome {
	var queue deque.Deque[int]
	queued := mapset.New[int]()

	queue.PushBack(start)
	queued.Put(start)

	outcome := emptyOutcome()
	for queue.Len() > 0 {
		i := queue.PopFront()
		step, next := g.revealOne(i, chord)
		chord = false
		outcome = Merge(outcome, step)
		for _, n := range next {
			if queued.Has(n) {
				continue
			}
			queued.Put(n)
			queue.PushBack(n)
		}
	}
	return outcome
}
