package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements driven.CredentialStore on a PostgreSQL
// key-value table. Used when no Redis is configured.
type CredentialStore struct {
	db *DB
}

// NewCredentialStore creates a new CredentialStore
func NewCredentialStore(db *DB) *CredentialStore {
	return &CredentialStore{db: db}
}

// Exists reports whether a record is stored for the username
func (s *CredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	key := domain.CredentialKey(username)
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM credentials WHERE key = $1)`, key,
	).Scan(&exists)
	if err != nil {
		return false, unavailable("exists", key, err)
	}
	return exists, nil
}

// Get retrieves a record by username
func (s *CredentialStore) Get(ctx context.Context, username string) (*domain.CredentialRecord, error) {
	key := domain.CredentialKey(username)
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE key = $1`, key,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get", key, err)
	}

	return domain.DecodeCredentialRecord(username, data)
}

// Put upserts a record; the last write wins
func (s *CredentialStore) Put(ctx context.Context, username string, record *domain.CredentialRecord) error {
	key := domain.CredentialKey(username)
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %w", err)
	}

	query := `
		INSERT INTO credentials (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, data); err != nil {
		return unavailable("put", key, err)
	}
	return nil
}

// Delete removes a record
func (s *CredentialStore) Delete(ctx context.Context, username string) error {
	key := domain.CredentialKey(username)
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE key = $1`, key); err != nil {
		return unavailable("delete", key, err)
	}
	return nil
}

// Ping checks if the database is reachable
func (s *CredentialStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return unavailable("ping", "", err)
	}
	return nil
}

func unavailable(op, key string, err error) error {
	return fmt.Errorf("postgres %s %s: %w: %w", op, key, domain.ErrStoreUnavailable, err)
}
