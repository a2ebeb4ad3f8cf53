// Package seed bulk-loads generated datasets into the document store. It is
// the only write path in this repository; the stats request path never
// mutates the store.
package seed

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/payvost/adminstats/internal/generator"
	"github.com/payvost/adminstats/internal/store"
)

// TaskError accumulates multiple errors produced during bulk seeding.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := "multiple errors:"
	for _, err := range e.Errors {
		msg += " " + err.Error() + ";"
	}
	return msg
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Seeder writes datasets into the store using a fixed worker pool.
type Seeder struct {
	store   store.Client
	workers int
}

// NewSeeder creates a Seeder with the provided concurrency.
func NewSeeder(client store.Client, workers int) *Seeder {
	if workers <= 0 {
		workers = 4
	}
	return &Seeder{
		store:   client,
		workers: workers,
	}
}

// SeedUsers writes the provided user documents concurrently.
func (s *Seeder) SeedUsers(ctx context.Context, users []generator.UserSeed) error {
	return s.run(ctx, len(users), func(idx int) error {
		u := users[idx]
		return s.store.SetUser(ctx, u.ID, hydrate(u.Data))
	})
}

// SeedTransactions writes transaction documents into their owners'
// sub-collections concurrently.
func (s *Seeder) SeedTransactions(ctx context.Context, txs []generator.TransactionSeed) error {
	return s.run(ctx, len(txs), func(idx int) error {
		tx := txs[idx]
		return s.store.AddTransaction(ctx, tx.UserID, tx.ID, hydrate(tx.Data))
	})
}

func (s *Seeder) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				select {
				case errCh <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		taskErr.append(err)
	}
	return taskErr.asError()
}

// hydrate rebuilds native store timestamps from their dataset wrapper (see
// generator.NativeTimeKey). Legacy encodings pass through untouched so the
// seeded store exhibits the same mixed shapes as production data.
func hydrate(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = hydrateValue(v)
	}
	return out
}

func hydrateValue(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	if raw, ok := m[generator.NativeTimeKey].(string); ok && len(m) == 1 {
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts
		}
	}
	return m
}
