package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryClient is an in-memory implementation of the Client interface used
// for unit tests and STORE_DRIVER=memory runs. It keeps whole documents and
// answers queries with the same semantics as the Firestore client: range
// filters on createdAt only match natively-typed timestamps, and a user
// without a transaction sub-collection reads as empty.
type MemoryClient struct {
	mu           sync.Mutex
	users        []UserDoc
	transactions map[string][]TransactionDoc
	userErrs     map[string]error
	listErr      error
	connectivity error
}

// NewMemoryClient instantiates an empty in-memory store.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		transactions: make(map[string][]TransactionDoc),
		userErrs:     make(map[string]error),
	}
}

// WithListUsersError forces ListUsers to fail, simulating an unreachable store.
func (m *MemoryClient) WithListUsersError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
	return m
}

// WithUserError forces transaction reads for the given user to fail while
// leaving every other user readable.
func (m *MemoryClient) WithUserError(userID string, err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userErrs[userID] = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

func (m *MemoryClient) ListUsers(ctx context.Context) ([]UserDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]UserDoc(nil), m.users...), nil
}

func (m *MemoryClient) ListUserTransactions(ctx context.Context, userID string, q TransactionQuery) ([]TransactionDoc, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.userErrs[userID]; err != nil {
		return nil, err
	}

	var out []TransactionDoc
	for _, tx := range m.transactions[userID] {
		if q.Start != nil || q.End != nil {
			ts, ok := tx.Data["createdAt"].(time.Time)
			if !ok {
				continue
			}
			if q.Start != nil && ts.Before(*q.Start) {
				continue
			}
			if q.End != nil && ts.After(*q.End) {
				continue
			}
		}
		out = append(out, tx)
	}

	if q.Start != nil || q.End != nil || q.OrderDesc {
		sort.SliceStable(out, func(i, j int) bool {
			ti, _ := out[i].Data["createdAt"].(time.Time)
			tj, _ := out[j].Data["createdAt"].(time.Time)
			if q.OrderDesc {
				return ti.After(tj)
			}
			return ti.Before(tj)
		})
	}

	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemoryClient) SetUser(ctx context.Context, userID string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, u := range m.users {
		if u.ID == userID {
			m.users[i].Data = cloneMap(data)
			return nil
		}
	}
	m.users = append(m.users, UserDoc{ID: userID, Data: cloneMap(data)})
	return nil
}

func (m *MemoryClient) AddTransaction(ctx context.Context, userID, txID string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	txs := m.transactions[userID]
	for i, tx := range txs {
		if tx.ID == txID {
			txs[i].Data = cloneMap(data)
			return nil
		}
	}
	m.transactions[userID] = append(txs, TransactionDoc{ID: txID, UserID: userID, Data: cloneMap(data)})
	return nil
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close() error {
	return nil
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
