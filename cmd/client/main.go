package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/lukemcneil/shields-up-engineering-client/internal/channel"
	"github.com/lukemcneil/shields-up-engineering-client/internal/config"
	"github.com/lukemcneil/shields-up-engineering-client/internal/game"
	"github.com/lukemcneil/shields-up-engineering-client/internal/journal"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
	"github.com/lukemcneil/shields-up-engineering-client/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("client", os.Args[1:])
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	log, err := logger.Init(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	store, err := journal.OpenStore(cfg.JournalDSN)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	rec := journal.NewRecorder(store, log.Named("journal"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connect := func(ctx context.Context, gameName string, player game.PlayerID) (*session.Session, error) {
		return session.Connect(ctx, session.Options{
			ID:      uuid.NewString(),
			Game:    gameName,
			Player:  player,
			Logger:  log.Named("session"),
			Journal: rec,
		}, channel.Options{Host: cfg.EngineHost, Port: cfg.EnginePort})
	}

	log.Info("client starting",
		zap.String("engine", channel.URL(cfg.EngineHost, cfg.EnginePort, cfg.GameName)),
		zap.String("player", string(cfg.Player)),
		zap.Bool("journal", cfg.JournalDSN != ""),
	)
	err = tui.Run(ctx, connect, tui.Options{
		Game:        cfg.GameName,
		Player:      cfg.Player,
		AutoConnect: true,
		Logger:      log.Named("tui"),
	})
	return multierr.Append(err, rec.Close())
}
