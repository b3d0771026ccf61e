package main

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strconv"
	"strings"
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"o": 2, // reveal row col
	"c": 2, // chord row col
	"f": 2, // toggle flag row col
	"n": 0, // new game
	"s": 0, // best times
	"q": 0, // quit
}

var errQuit = errors.New("quit")

func byPiece(s string, sep string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		i := 0
		found := true
		var piece string
		for found {
			piece, s, found = strings.Cut(s, sep)
			if !yield(i, piece) {
				return
			}
			i += 1
		}
	}
}

func parseRowCol(twoStrings []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(twoStrings[0]); err != nil {
		err = errors.New("row must be an int")
		return
	}
	if col, err = strconv.Atoi(twoStrings[1]); err != nil {
		err = errors.New("column must be an int")
		return
	}
	return
}

// executeLine runs every ";"-separated command of line and stops at the
// first error.
func (s *session) executeLine(ctx context.Context, line string) error {
	for _, c := range byPiece(line, ";") {
		if err := s.execute(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) execute(ctx context.Context, c string) (err error) {
	parts := strings.Fields(c)
	if len(parts) == 0 {
		return nil
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return fmt.Errorf("unknown command %q", parts[0])
	}
	if nargs != len(parts)-1 {
		return fmt.Errorf("%s takes %d arguments", parts[0], nargs)
	}

	var row, col int
	if nargs == 2 {
		if row, col, err = parseRowCol(parts[1:]); err != nil {
			return err
		}
	}

	switch parts[0] {
	case "o":
		_, err = s.game.Reveal(ctx, row, col)
	case "c":
		_, err = s.game.Chord(ctx, row, col)
	case "f":
		_, err = s.game.ToggleFlag(row, col)
	case "n":
		game, err := s.game.Reset(ctx)
		if err != nil {
			return err
		}
		s.game = game
	case "s":
		err = s.printScores(ctx)
	case "q":
		err = errQuit
	}
	return err
}
