package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukemcneil/shields-up-engineering-client/internal/channel"
	"github.com/lukemcneil/shields-up-engineering-client/internal/config"
	"github.com/lukemcneil/shields-up-engineering-client/internal/httpapi"
	"github.com/lukemcneil/shields-up-engineering-client/internal/hub"
	"github.com/lukemcneil/shields-up-engineering-client/internal/journal"
	"github.com/lukemcneil/shields-up-engineering-client/internal/logger"
	"github.com/lukemcneil/shields-up-engineering-client/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("bridge", os.Args[1:])
	if err != nil {
		return err
	}

	log, err := logger.Init(cfg.LogLevel, "")
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	store, err := journal.OpenStore(cfg.JournalDSN)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	rec := journal.NewRecorder(store, log.Named("journal"))

	var reader httpapi.JournalReader
	if gs, ok := store.(*journal.GormStore); ok {
		reader = gs
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, hub.Options{
		Connect: func(ctx context.Context, opts session.Options) (*session.Session, error) {
			return session.Connect(ctx, opts, channel.Options{Host: cfg.EngineHost, Port: cfg.EnginePort})
		},
		Journal: rec,
		Logger:  log.Named("hub"),
	})

	srv := &http.Server{
		Addr:              cfg.BridgeAddr,
		Handler:           httpapi.SetupRoutes(h, reader, log.Named("http")),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.BridgeAddr),
			zap.String("engine", fmt.Sprintf("%s:%d", cfg.EngineHost, cfg.EnginePort)))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	stop()
	return multierr.Append(err, rec.Close())
}
