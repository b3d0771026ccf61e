package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type State int8

const (
	NotStarted State = iota
	InProgress
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case InProgress:
		return "in progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Over reports whether s is terminal.
func (s State) Over() bool {
	return s == Won || s == Lost
}

type CellState int8

const (
	Unknown          CellState = -2
	Flagged          CellState = -1
	CorrectlyFlagged CellState = 64
	ExplodedMine     CellState = 65
	FalselyFlagged   CellState = 66
	UnflaggedMine    CellState = 67
	/*
	 * Each cell of a view is one of the following values:
	 *
	 * 	- 0 to 8 mean the tile is shown and has that many
	 * 	  adjacent mines.
	 *
	 * 	- -1 means the tile is flagged.
	 *
	 * 	- -2 means the tile is concealed.
	 *
	 * 	- 64 and up only appear once the game is over: a flagged
	 * 	  mine, the mine that went off, a flag on a safe tile and a
	 * 	  mine the player never marked.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return "#"
	case s == Flagged, s == CorrectlyFlagged:
		return "F"
	case s == 0:
		return "."
	case 1 <= s && s <= 8:
		return strconv.Itoa(int(s))
	case s == ExplodedMine:
		return "X"
	case s == FalselyFlagged:
		return "x"
	case s == UnflaggedMine:
		return "*"
	default:
		return "!"
	}
}

type Cells []CellState

func (c Cells) ToString(cols int) string {
	var b strings.Builder
	for row := range len(c) / cols {
		for col := range cols {
			fmt.Fprint(&b, c[row*cols+col].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
