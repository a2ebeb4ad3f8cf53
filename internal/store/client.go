package store

import (
	"context"
	"errors"
	"time"
)

// Client defines the minimal contract required by the stats service to read
// the document store: a flat users collection, each user owning a
// "transactions" sub-collection that supports range queries on createdAt.
// Field values are surfaced raw so legacy encodings (string amounts,
// {_seconds} timestamps, lowercase currency codes) reach the parsers
// untouched. The write methods exist for seed tooling only; nothing on the
// request path mutates the store.
type Client interface {
	ListUsers(ctx context.Context) ([]UserDoc, error)
	ListUserTransactions(ctx context.Context, userID string, q TransactionQuery) ([]TransactionDoc, error)
	SetUser(ctx context.Context, userID string, data map[string]any) error
	AddTransaction(ctx context.Context, userID, txID string, data map[string]any) error
	VerifyConnectivity(ctx context.Context) error
	Close() error
}

// UserDoc is a raw user document.
type UserDoc struct {
	ID   string
	Data map[string]any
}

// TransactionDoc is a raw transaction document from a user's sub-collection.
type TransactionDoc struct {
	ID     string
	UserID string
	Data   map[string]any
}

// TransactionQuery bounds a sub-collection read. Range filters apply to the
// createdAt field; as in Firestore, only natively-typed timestamp values
// match a range filter, so unbounded queries are the only way to see
// legacy-encoded documents.
type TransactionQuery struct {
	Start     *time.Time
	End       *time.Time
	OrderDesc bool
	Limit     int
}

// Options configures a store client implementation.
type Options struct {
	ProjectID              string
	CredentialsFile        string
	UsersCollection        string
	TransactionsCollection string
}

// ErrMissingProjectID indicates the Firestore project is not configured.
var ErrMissingProjectID = errors.New("firestore project ID is required")
