package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewFirestoreClient connects to Firestore using the official SDK. The
// FIRESTORE_EMULATOR_HOST environment variable is honoured by the SDK
// itself, so local emulator runs need no extra wiring here.
func NewFirestoreClient(ctx context.Context, opts Options) (Client, error) {
	if opts.ProjectID == "" {
		return nil, ErrMissingProjectID
	}

	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, opts.ProjectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	return &firestoreClient{
		client:   client,
		usersCol: orDefault(opts.UsersCollection, "users"),
		txCol:    orDefault(opts.TransactionsCollection, "transactions"),
	}, nil
}

type firestoreClient struct {
	client   *firestore.Client
	usersCol string
	txCol    string
}

func (c *firestoreClient) ListUsers(ctx context.Context) ([]UserDoc, error) {
	iter := c.client.Collection(c.usersCol).Documents(ctx)
	defer iter.Stop()

	var users []UserDoc
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate users: %w", err)
		}
		users = append(users, UserDoc{ID: doc.Ref.ID, Data: doc.Data()})
	}
	return users, nil
}

func (c *firestoreClient) ListUserTransactions(ctx context.Context, userID string, q TransactionQuery) ([]TransactionDoc, error) {
	query := c.client.Collection(c.usersCol).Doc(userID).Collection(c.txCol).Query
	if q.Start != nil {
		query = query.Where("createdAt", ">=", *q.Start)
	}
	if q.End != nil {
		query = query.Where("createdAt", "<=", *q.End)
	}
	if q.Start != nil || q.End != nil || q.OrderDesc {
		dir := firestore.Asc
		if q.OrderDesc {
			dir = firestore.Desc
		}
		query = query.OrderBy("createdAt", dir)
	}
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var txs []TransactionDoc
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if status.Code(err) == codes.NotFound {
			// Missing sub-collection reads as empty, never as a failure.
			return txs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("iterate transactions for %s: %w", userID, err)
		}
		txs = append(txs, TransactionDoc{ID: doc.Ref.ID, UserID: userID, Data: doc.Data()})
	}
	return txs, nil
}

func (c *firestoreClient) SetUser(ctx context.Context, userID string, data map[string]any) error {
	_, err := c.client.Collection(c.usersCol).Doc(userID).Set(ctx, data)
	if err != nil {
		return fmt.Errorf("set user %s: %w", userID, err)
	}
	return nil
}

func (c *firestoreClient) AddTransaction(ctx context.Context, userID, txID string, data map[string]any) error {
	_, err := c.client.Collection(c.usersCol).Doc(userID).Collection(c.txCol).Doc(txID).Set(ctx, data)
	if err != nil {
		return fmt.Errorf("set transaction %s/%s: %w", userID, txID, err)
	}
	return nil
}

func (c *firestoreClient) VerifyConnectivity(ctx context.Context) error {
	// A bounded read against the users collection doubles as a liveness
	// probe; Firestore has no dedicated ping RPC.
	iter := c.client.Collection(c.usersCol).Limit(1).Documents(ctx)
	defer iter.Stop()
	if _, err := iter.Next(); err != nil && err != iterator.Done {
		return fmt.Errorf("probe firestore: %w", err)
	}
	return nil
}

func (c *firestoreClient) Close() error {
	return c.client.Close()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
