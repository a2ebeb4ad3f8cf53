package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryClientRangeFilterMatchesNativeTimestampsOnly(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient()

	base := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if err := mem.AddTransaction(ctx, "usr_a", "tx_native", map[string]any{"createdAt": base}); err != nil {
		t.Fatal(err)
	}
	if err := mem.AddTransaction(ctx, "usr_a", "tx_iso", map[string]any{"createdAt": base.Format(time.RFC3339)}); err != nil {
		t.Fatal(err)
	}
	if err := mem.AddTransaction(ctx, "usr_a", "tx_seconds", map[string]any{
		"createdAt": map[string]any{"_seconds": base.Unix()},
	}); err != nil {
		t.Fatal(err)
	}

	start := base.Add(-24 * time.Hour)
	end := base.Add(24 * time.Hour)
	bounded, err := mem.ListUserTransactions(ctx, "usr_a", TransactionQuery{Start: &start, End: &end})
	if err != nil {
		t.Fatal(err)
	}
	if len(bounded) != 1 || bounded[0].ID != "tx_native" {
		t.Errorf("bounded query returned %+v, want only tx_native", bounded)
	}

	unbounded, err := mem.ListUserTransactions(ctx, "usr_a", TransactionQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(unbounded) != 3 {
		t.Errorf("unbounded query returned %d docs, want all 3", len(unbounded))
	}
}

func TestMemoryClientOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient()

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"tx_1", "tx_2", "tx_3"} {
		if err := mem.AddTransaction(ctx, "usr_a", id, map[string]any{
			"createdAt": base.Add(time.Duration(i) * time.Hour),
		}); err != nil {
			t.Fatal(err)
		}
	}

	out, err := mem.ListUserTransactions(ctx, "usr_a", TransactionQuery{OrderDesc: true, Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(out))
	}
	if out[0].ID != "tx_3" || out[1].ID != "tx_2" {
		t.Errorf("expected newest first, got %+v", out)
	}
}

func TestMemoryClientSetUserUpserts(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient()

	if err := mem.SetUser(ctx, "usr_a", map[string]any{"email": "old@example.com"}); err != nil {
		t.Fatal(err)
	}
	if err := mem.SetUser(ctx, "usr_a", map[string]any{"email": "new@example.com"}); err != nil {
		t.Fatal(err)
	}

	users, err := mem.ListUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user after upsert, got %d", len(users))
	}
	if users[0].Data["email"] != "new@example.com" {
		t.Errorf("expected updated document, got %+v", users[0].Data)
	}
}

func TestMemoryClientInjectedErrors(t *testing.T) {
	ctx := context.Background()
	userErr := errors.New("sub-collection read failed")
	mem := NewMemoryClient().WithUserError("usr_broken", userErr)

	if _, err := mem.ListUserTransactions(ctx, "usr_broken", TransactionQuery{}); !errors.Is(err, userErr) {
		t.Errorf("expected injected error, got %v", err)
	}
	if _, err := mem.ListUserTransactions(ctx, "usr_ok", TransactionQuery{}); err != nil {
		t.Errorf("other users must stay readable, got %v", err)
	}

	connErr := errors.New("store down")
	mem.WithConnectivityError(connErr)
	if err := mem.VerifyConnectivity(ctx); !errors.Is(err, connErr) {
		t.Errorf("expected connectivity error, got %v", err)
	}
}

func TestMemoryClientEmptyUserReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryClient()
	if err := mem.SetUser(ctx, "usr_empty", map[string]any{"email": "e@example.com"}); err != nil {
		t.Fatal(err)
	}

	out, err := mem.ListUserTransactions(ctx, "usr_empty", TransactionQuery{})
	if err != nil {
		t.Fatalf("expected empty result, got error %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected no transactions, got %+v", out)
	}
}
