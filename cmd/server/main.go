package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/payvost/adminstats/internal/config"
	"github.com/payvost/adminstats/internal/logging"
	"github.com/payvost/adminstats/internal/server"
	"github.com/payvost/adminstats/internal/stats"
	"github.com/payvost/adminstats/internal/store"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("service", "admin-stats")

	storeClient, err := buildStoreClient(ctx, logger, cfg)
	if err != nil {
		logger.Error("failed to create store client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if storeClient != nil {
			if err := storeClient.Close(); err != nil {
				logger.Warn("closing store client failed", "error", err)
			}
		}
	}()

	scanner := stats.NewScanner(storeClient, logger, cfg.Stats.ScanWorkers, cfg.Stats.PerUserTxLimit)
	statsService := stats.NewService(scanner, logger, nil)
	statsHandlers := server.NewStatsHandlers(logger, statsService, cfg.IsDevelopment(), cfg.Stats.RecentTxLimit)

	router := server.NewRouter(logger, server.RouterDependencies{
		Health:           server.StoreHealthService{Client: storeClient},
		Stats:            statsHandlers,
		AllowedOrigins:   parseAllowedOrigins(cfg.HTTP.AllowedOriginsCSV),
		AllowCredentials: true,
		Development:      cfg.IsDevelopment(),
	})

	srv := server.New(logger, cfg.HTTP, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("server stopped unexpectedly", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func buildStoreClient(ctx context.Context, logger *slog.Logger, cfg config.Config) (store.Client, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case "memory":
		// Local development without an emulator; starts empty.
		logger.Warn("using in-memory store; data will not persist")
		return store.NewMemoryClient(), nil
	case "firestore":
		return store.NewFirestoreClient(ctx, store.Options{
			ProjectID:              cfg.Store.ProjectID,
			CredentialsFile:        cfg.Store.CredentialsFile,
			UsersCollection:        cfg.Store.UsersCollection,
			TransactionsCollection: cfg.Store.TransactionsCollection,
		})
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func parseAllowedOrigins(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	var origins []string
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		origins = append(origins, origin)
	}
	return origins
}
