// Package ports defines the boundary interfaces the authentication core
// consumes and exposes.
package ports

import (
	"context"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/errors"
)

// AccountID identifies an account inside a tenant.
type AccountID string

// String returns the account identifier.
func (id AccountID) String() string {
	return string(id)
}

// Account store errors, surfaced as-is to callers of the orchestrator.
var (
	// ErrAccountExists is returned by CreateAccount when a binding for
	// (tenant, identity) already exists. Adapters must translate their
	// storage-level unique-constraint violation into this error rather
	// than propagating a raw storage error.
	ErrAccountExists = errors.ErrAccountExists

	// ErrAccountNotFound is returned by FindByIdentity when no binding
	// exists for (tenant, identity).
	ErrAccountNotFound = errors.ErrAccountNotFound
)

// AccountStore is the external collaborator owning account bindings.
//
// Invariant: for a given tenant, at most one binding may exist per
// identity. CreateAccount creates the account and binds the identity as one
// transactional unit; the insert's unique constraint on (tenant, identity)
// is the source of truth for the invariant, so two concurrent CreateAccount
// calls with the same arguments must resolve to one success and one
// ErrAccountExists.
type AccountStore interface {
	// FindByIdentity returns the account bound to (tenant, identity),
	// or ErrAccountNotFound.
	FindByIdentity(ctx context.Context, tenant string, identity domain.Identity) (AccountID, error)

	// CreateAccount creates a new account for the tenant and binds the
	// identity to it atomically. Returns ErrAccountExists if a binding
	// for (tenant, identity) already exists.
	CreateAccount(ctx context.Context, tenant string, identity domain.Identity) (AccountID, error)
}
