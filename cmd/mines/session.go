package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/records"
)

type session struct {
	game   *mines.Game
	store  records.Store
	out    io.Writer
	logger *slog.Logger
}

// readLines sends every line of r to lines and closes it once r is
// exhausted, reading fails or ctx is done.
func readLines(ctx context.Context, r io.Reader, lines chan<- string) error {
	defer close(lines)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}
	return nil
}

// play executes lines until the player quits, input ends or ctx is done.
// It always returns a non-nil error; [errQuit] means a normal exit.
func (s *session) play(ctx context.Context, lines <-chan string) error {
	s.render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return errQuit
			}
			before, best := s.game.State(), s.game.Best()
			err := s.executeLine(ctx, line)
			if errors.Is(err, errQuit) {
				return err
			}
			if err != nil {
				s.logger.Debug("command failed", slog.String("line", line), slog.Any("error", err))
				fmt.Fprintf(s.out, "error: %v\n", err)
			}
			s.render()
			if !before.Over() {
				s.announce(best)
			}
		}
	}
}

func (s *session) render() {
	g := s.game
	cols := g.Params().Cols

	fmt.Fprintf(s.out, "%s  mines: %03d  time: %03d  best: %03d\n",
		g.State(), g.MinesLeft(), g.Elapsed(), g.Best())

	var b strings.Builder
	b.WriteString("    ")
	for col := range cols {
		fmt.Fprintf(&b, "%d ", col%10)
	}
	fmt.Fprintln(s.out, strings.TrimRight(b.String(), " "))

	board := strings.TrimSuffix(g.Cells().ToString(cols), "\n")
	for row, line := range byPiece(board, "\n") {
		fmt.Fprintf(s.out, "%3d %s\n", row, strings.TrimRight(line, " "))
	}
}

func (s *session) announce(previousBest int) {
	g := s.game
	switch g.State() {
	case mines.Won:
		fmt.Fprintf(s.out, "cleared %s in %d seconds\n", g.Params(), g.Elapsed())
		if g.Best() < previousBest {
			fmt.Fprintln(s.out, "new best time!")
		}
	case mines.Lost:
		trigger := g.Trigger()
		fmt.Fprintf(s.out, "boom at %d %d, type n for a new game\n", trigger.Row, trigger.Col)
	}
}

func (s *session) printScores(ctx context.Context) error {
	all, err := s.store.All(ctx)
	if err != nil {
		return fmt.Errorf("unable to list best times: %w", err)
	}
	if len(all) == 0 {
		fmt.Fprintln(s.out, "no best times yet")
		return nil
	}
	fmt.Fprintf(s.out, "%5s %5s %5s %5s\n", "rows", "cols", "mines", "best")
	for _, r := range all {
		fmt.Fprintf(s.out, "%5d %5d %5d %5d\n", r.Rows, r.Cols, r.Mines, r.Highscore)
	}
	return nil
}
