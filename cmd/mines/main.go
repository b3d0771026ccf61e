package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper/internal/config"
	"github.com/vancomm/minesweeper/internal/mines"
	"github.com/vancomm/minesweeper/internal/records"
)

func main() {
	logger := config.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	cfg, err := config.Load("mines", os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		logger.Error("invalid configuration", slog.Any("error", err))
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	store, err := records.Open(ctx, records.Options{
		Backend: cfg.Records.Backend,
		Path:    cfg.Records.Path,
		DSN:     cfg.Records.DSN,
		Migrate: cfg.Records.Migrate,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("unable to open records", slog.Any("error", err))
		os.Exit(1)
	}

	game, err := mines.NewGame(ctx, cfg.Params(),
		mines.WithRand(mines.NewRand(cfg.Seed)),
		mines.WithRecords(store),
		mines.WithLogger(logger),
	)
	if err != nil {
		store.Close()
		logger.Error("unable to start game", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Debug("starting up",
		slog.String("board", cfg.Params().String()),
		slog.String("records", cfg.Records.Backend),
	)

	s := &session{game: game, store: store, out: os.Stdout, logger: logger}
	lines := make(chan string)
	g, gCtx := errgroup.WithContext(ctx)

	// not part of g: a read blocked on stdin cannot be interrupted
	go func() {
		if err := readLines(gCtx, os.Stdin, lines); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("input closed", slog.Any("error", err))
		}
	}()
	g.Go(func() error {
		return s.play(gCtx, lines)
	})
	g.Go(func() error {
		<-gCtx.Done()
		return store.Close()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errQuit) {
		logger.Info("exit", slog.Any("reason", err))
	}
}
