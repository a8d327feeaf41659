package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/quadboard/internal/api"
	"github.com/dgallion1/quadboard/internal/board"
	"github.com/dgallion1/quadboard/internal/config"
	"github.com/dgallion1/quadboard/internal/drafts"
	"github.com/dgallion1/quadboard/internal/kv"
	"github.com/dgallion1/quadboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()
	log := cfg.Logger()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := kv.Open(kv.Options{
		Backend:      cfg.StoreBackend,
		DBPath:       cfg.DBPath,
		RemoteURL:    cfg.RemoteStoreURL,
		RemoteAPIKey: cfg.RemoteStoreAPIKey,
	})
	if err != nil {
		log.Error("open store", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.MustNewRecorder(reg, cfg.StatsWindow)

	srv := api.NewServer(
		board.NewService(store),
		drafts.NewService(store, cfg.DefaultMaxChunkChars),
		rec,
		reg,
		log.With("component", "api"),
		cfg,
	)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting quadboard", "port", cfg.Port, "store", cfg.StoreBackend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		store.Close()
		os.Exit(1)
	}
}
