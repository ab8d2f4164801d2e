package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore implements driven.CredentialStore using Redis.
// Each record is a JSON string under "user:<username>" with no TTL.
type CredentialStore struct {
	client *redis.Client
}

// NewCredentialStore creates a new Redis-backed CredentialStore
func NewCredentialStore(client *redis.Client) *CredentialStore {
	return &CredentialStore{client: client}
}

// Exists reports whether a record is stored for the username
func (s *CredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	key := domain.CredentialKey(username)
	n, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, unavailable("exists", key, err)
	}
	return n > 0, nil
}

// Get retrieves a record by username
func (s *CredentialStore) Get(ctx context.Context, username string) (*domain.CredentialRecord, error) {
	key := domain.CredentialKey(username)
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get", key, err)
	}

	return domain.DecodeCredentialRecord(username, data)
}

// Put stores a record, overwriting any previous value (last write wins)
func (s *CredentialStore) Put(ctx context.Context, username string, record *domain.CredentialRecord) error {
	key := domain.CredentialKey(username)
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal credential record: %w", err)
	}

	if err := s.client.Set(ctx, key, data, 0).Err(); err != nil {
		return unavailable("set", key, err)
	}
	return nil
}

// Delete removes a record
func (s *CredentialStore) Delete(ctx context.Context, username string) error {
	key := domain.CredentialKey(username)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return unavailable("del", key, err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *CredentialStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", "", err)
	}
	return nil
}

// unavailable marks a backend failure while keeping the original error in the chain
func unavailable(op, key string, err error) error {
	return fmt.Errorf("redis %s %s: %w: %w", op, key, domain.ErrStoreUnavailable, err)
}
