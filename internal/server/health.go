package server

import (
	"context"

	"github.com/payvost/adminstats/internal/store"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// StoreHealthService verifies document-store connectivity as part of health
// checks. The frontend reads the result as the firebaseInitialized flag.
type StoreHealthService struct {
	Client store.Client
}

// Probe implements the HealthService interface.
func (s StoreHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
