package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/payvost/adminstats/internal/generator"
)

func main() {
	cfg := generator.DefaultConfig()
	var (
		users        = flag.Int("users", cfg.NumUsers, "number of users to generate")
		maxTx        = flag.Int("max-tx-per-user", cfg.MaxTxPerUser, "maximum transactions per user")
		legacyChance = flag.Float64("legacy-ts-chance", cfg.LegacyTimestampChance, "probability of a legacy timestamp encoding")
		stringChance = flag.Float64("string-amount-chance", cfg.StringAmountChance, "probability of a string-encoded amount")
		badChance    = flag.Float64("bad-amount-chance", cfg.BadAmountChance, "probability of a non-numeric amount")
		inactive     = flag.Float64("inactive-chance", cfg.InactiveUserChance, "probability of a user inactive for 30+ days")
		empty        = flag.Float64("empty-chance", cfg.EmptyUserChance, "probability of a user with no transactions")
		seed         = flag.Int64("seed", cfg.Seed, "random seed for deterministic generation")
		outputDir    = flag.String("output-dir", "data", "directory to write users.json and transactions.json")
		writeStdout  = flag.Bool("stdout", false, "write combined dataset to stdout instead of files")
	)
	flag.Parse()

	genCfg := generator.Config{
		NumUsers:              *users,
		MaxTxPerUser:          *maxTx,
		LegacyTimestampChance: clampProbability(*legacyChance),
		StringAmountChance:    clampProbability(*stringChance),
		BadAmountChance:       clampProbability(*badChance),
		InactiveUserChance:    clampProbability(*inactive),
		EmptyUserChance:       clampProbability(*empty),
		Currencies:            cfg.Currencies,
		Seed:                  *seed,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	gen := generator.New(genCfg)
	dataset, err := gen.Generate(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	if *writeStdout {
		if err := json.NewEncoder(os.Stdout).Encode(dataset); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write dataset to stdout: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := generator.WriteDataset(dataset, *outputDir); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stdout, "Generated %d users and %d transactions into %s\n", len(dataset.Users), len(dataset.Transactions), *outputDir)
}

func clampProbability(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
