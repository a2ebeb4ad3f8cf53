package stats

import (
	"context"
	"log/slog"
	"sync"

	"github.com/payvost/adminstats/internal/store"
)

// UserScan is the explicit per-user result of a collection scan: either the
// user's transaction batch or the error that prevented reading it. One
// user's missing or unreadable sub-collection never aborts the scan of the
// others; the aggregation fold treats a failed scan as zero transactions.
type UserScan struct {
	User         store.UserDoc
	Transactions []store.TransactionDoc
	Err          error
}

// Scanner fans a transaction query out across every user in the store.
type Scanner struct {
	store        store.Client
	logger       *slog.Logger
	workers      int
	perUserLimit int
}

// NewScanner builds a Scanner. workers <= 1 preserves the strictly
// sequential one-user-at-a-time scan of the original service; larger values
// enable bounded fan-out, which is safe because the fold downstream is
// commutative.
func NewScanner(client store.Client, logger *slog.Logger, workers, perUserLimit int) *Scanner {
	if workers < 1 {
		workers = 1
	}
	return &Scanner{
		store:        client,
		logger:       logger,
		workers:      workers,
		perUserLimit: perUserLimit,
	}
}

// PerUserLimit returns the bound applied to each sub-collection query.
func (s *Scanner) PerUserLimit() int {
	return s.perUserLimit
}

// Scan lists every user and issues one bounded range query per user over
// that user's transaction sub-collection. Only the user listing itself can
// fail the scan; per-user query errors are recorded on the corresponding
// UserScan and logged.
func (s *Scanner) Scan(ctx context.Context, q store.TransactionQuery) ([]UserScan, error) {
	if q.Limit == 0 {
		q.Limit = s.perUserLimit
	}

	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	scans := make([]UserScan, len(users))
	if s.workers <= 1 {
		for i, user := range users {
			scans[i] = s.scanUser(ctx, user, q)
		}
		return scans, nil
	}

	indexCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range indexCh {
				scans[idx] = s.scanUser(ctx, users[idx], q)
			}
		}()
	}

Loop:
	for i := range users {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return scans, nil
}

func (s *Scanner) scanUser(ctx context.Context, user store.UserDoc, q store.TransactionQuery) UserScan {
	txs, err := s.store.ListUserTransactions(ctx, user.ID, q)
	if err != nil {
		s.logger.Warn("skipping user transactions", "userId", user.ID, "error", err)
		return UserScan{User: user, Err: err}
	}
	return UserScan{User: user, Transactions: txs}
}
