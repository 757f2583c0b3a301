// Package memaccount provides an in-memory AccountStore, used in tests and
// single-process deployments.
package memaccount

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/ports"
)

type bindingKey struct {
	tenant   string
	identity domain.Identity
}

// Store is a mutex-guarded in-memory AccountStore. The single lock spans
// the existence check and the insert, giving the same atomicity a storage
// unique constraint provides.
type Store struct {
	mu       sync.Mutex
	bindings map[bindingKey]ports.AccountID
}

// New creates an empty store.
func New() *Store {
	return &Store{
		bindings: make(map[bindingKey]ports.AccountID),
	}
}

// FindByIdentity returns the account bound to (tenant, identity).
func (s *Store) FindByIdentity(ctx context.Context, tenant string, identity domain.Identity) (ports.AccountID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accountID, ok := s.bindings[bindingKey{tenant: tenant, identity: identity}]
	if !ok {
		return "", ports.ErrAccountNotFound
	}
	return accountID, nil
}

// CreateAccount creates an account and binds the identity atomically.
func (s *Store) CreateAccount(ctx context.Context, tenant string, identity domain.Identity) (ports.AccountID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := bindingKey{tenant: tenant, identity: identity}
	if _, exists := s.bindings[key]; exists {
		return "", ports.ErrAccountExists
	}

	accountID := ports.AccountID(uuid.NewString())
	s.bindings[key] = accountID
	return accountID, nil
}

// Count returns the number of bindings across all tenants.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bindings)
}
