// Package sqlaccount provides a SQLite-backed AccountStore. The
// (tenant, thumbprint) unique constraint is the correctness mechanism for
// concurrent registration: the insert either wins or reports a violation,
// which is translated to ErrAccountExists.
package sqlaccount

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sufield/certauth/internal/core/domain"
	"github.com/sufield/certauth/internal/core/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS account_bindings (
	account_id TEXT NOT NULL PRIMARY KEY,
	tenant     TEXT NOT NULL,
	thumbprint TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (tenant, thumbprint)
);
`

// Store is a SQLite-backed AccountStore.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) a store at the given SQLite DSN.
// Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open account store: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize account store schema: %w", err)
	}

	return &Store{db: db}, nil
}

// FindByIdentity returns the account bound to (tenant, identity).
func (s *Store) FindByIdentity(ctx context.Context, tenant string, identity domain.Identity) (ports.AccountID, error) {
	var accountID string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id FROM account_bindings WHERE tenant = ? AND thumbprint = ?`,
		tenant, identity.String(),
	).Scan(&accountID)
	if stderrors.Is(err, sql.ErrNoRows) {
		return "", ports.ErrAccountNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up account binding: %w", err)
	}
	return ports.AccountID(accountID), nil
}

// CreateAccount inserts a new binding. Account creation and identity
// binding are one row, so they are transactionally coupled by construction.
func (s *Store) CreateAccount(ctx context.Context, tenant string, identity domain.Identity) (ports.AccountID, error) {
	accountID := uuid.NewString()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account_bindings (account_id, tenant, thumbprint) VALUES (?, ?, ?)`,
		accountID, tenant, identity.String(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ports.ErrAccountExists
		}
		return "", fmt.Errorf("failed to insert account binding: %w", err)
	}

	return ports.AccountID(accountID), nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// violation on the insert.
func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !stderrors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
		code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
		code&0xff == sqlite3.SQLITE_CONSTRAINT
}
