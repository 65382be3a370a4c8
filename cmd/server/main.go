/*
main.go - Rental billing server entrypoint

PURPOSE:
  Loads configuration, picks a storage backend, wires the HTTP API and
  runs it with graceful shutdown.

USAGE:
  server [-config configs/config.yaml] [-port 8080]
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/plank/rental-engine/api"
	"github.com/plank/rental-engine/billing"
	"github.com/plank/rental-engine/config"
	"github.com/plank/rental-engine/rental"
	"github.com/plank/rental-engine/store/jsonfile"
	"github.com/plank/rental-engine/store/sqlite"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default configs/config.yaml)")
	port := flag.Int("port", 0, "override listen port")
	demo := flag.Bool("demo", false, "seed demo customers on startup")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := config.Load(*configPath)
	if *port > 0 {
		cfg.Server.Port = *port
	}

	repo, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Error("store init failed", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	if *demo {
		if err := rental.SeedDemo(context.Background(), repo); err != nil {
			logger.Error("demo seed failed", "error", err)
			os.Exit(1)
		}
		logger.Info("demo data seeded")
	}

	policy := billing.PaymentPolicy(cfg.Billing.DefaultPolicy)
	handler := api.NewHandler(repo, policy, logger)
	router := api.NewRouter(handler, cfg.Server.CorsAllowedOrigins)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			"addr", srv.Addr,
			"backend", cfg.Store.Backend,
			"default_policy", cfg.Billing.DefaultPolicy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func openStore(cfg *config.Config, logger *slog.Logger) (rental.Repository, func(), error) {
	switch cfg.Store.Backend {
	case "sqlite":
		repo, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return repo, func() { repo.Close() }, nil
	case "", "jsonfile":
		repo, err := jsonfile.New(cfg.Store.DataDir, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("open jsonfile store: %w", err)
		}
		return repo, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
