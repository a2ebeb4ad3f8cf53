package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/payvost/adminstats/internal/config"
	"github.com/payvost/adminstats/internal/generator"
	"github.com/payvost/adminstats/internal/logging"
	"github.com/payvost/adminstats/internal/seed"
	"github.com/payvost/adminstats/internal/store"
)

var errMissingDataset = errors.New("dataset not found")

func main() {
	var (
		datasetDir   = flag.String("dataset-dir", "./data", "Directory containing users.json and transactions.json")
		usersPath    = flag.String("users", "", "Path to users.json (overrides dataset-dir)")
		transactions = flag.String("transactions", "", "Path to transactions.json (overrides dataset-dir)")
		workers      = flag.Int("workers", 4, "Number of concurrent workers for seeding")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging).With("component", "seed")

	userFile, txFile, err := resolveDatasetPaths(*datasetDir, *usersPath, *transactions)
	if err != nil {
		logger.Error("dataset resolution failed", "error", err)
		os.Exit(1)
	}

	var users []generator.UserSeed
	if err := loadJSON(userFile, &users); err != nil {
		logger.Error("failed to load users", "error", err, "path", userFile)
		os.Exit(1)
	}
	if len(users) == 0 {
		logger.Error("users dataset empty", "path", userFile)
		os.Exit(1)
	}

	var txs []generator.TransactionSeed
	if err := loadJSON(txFile, &txs); err != nil {
		logger.Error("failed to load transactions", "error", err, "path", txFile)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	storeClient, err := store.NewFirestoreClient(ctx, store.Options{
		ProjectID:              cfg.Store.ProjectID,
		CredentialsFile:        cfg.Store.CredentialsFile,
		UsersCollection:        cfg.Store.UsersCollection,
		TransactionsCollection: cfg.Store.TransactionsCollection,
	})
	if err != nil {
		logger.Error("failed to create store client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := storeClient.Close(); err != nil {
			logger.Warn("closing store client failed", "error", err)
		}
	}()

	seeder := seed.NewSeeder(storeClient, *workers)

	start := time.Now()
	logger.Info("seeding users", "count", len(users), "workers", *workers)
	if err := seeder.SeedUsers(ctx, users); err != nil {
		logger.Error("user seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding transactions", "count", len(txs))
	if err := seeder.SeedTransactions(ctx, txs); err != nil {
		logger.Error("transaction seeding failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seeding complete", "duration", time.Since(start).String(), "users", len(users), "transactions", len(txs))
}

func resolveDatasetPaths(baseDir, usersPath, transactionsPath string) (string, string, error) {
	resolve := func(explicitPath, fallbackFile string) (string, error) {
		if explicitPath != "" {
			if _, err := os.Stat(explicitPath); err != nil {
				return "", fmt.Errorf("stat %s: %w", explicitPath, err)
			}
			return explicitPath, nil
		}
		path := filepath.Join(baseDir, fallbackFile)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", errMissingDataset, path)
		}
		return path, nil
	}

	usersFile, err := resolve(usersPath, "users.json")
	if err != nil {
		return "", "", err
	}
	txsFile, err := resolve(transactionsPath, "transactions.json")
	if err != nil {
		return "", "", err
	}
	return usersFile, txsFile, nil
}

func loadJSON(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
