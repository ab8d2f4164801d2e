package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

// Ensure MockCredentialStore implements CredentialStore
var _ driven.CredentialStore = (*MockCredentialStore)(nil)

// MockCredentialStore is an in-memory CredentialStore for testing.
// Setting Err makes every call fail as an unreachable backend would.
type MockCredentialStore struct {
	mu      sync.RWMutex
	records map[string]domain.CredentialRecord
	Err     error
}

// NewMockCredentialStore creates a new MockCredentialStore
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		records: make(map[string]domain.CredentialRecord),
	}
}

func (m *MockCredentialStore) fail() error {
	if m.Err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, m.Err)
}

func (m *MockCredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	if err := m.fail(); err != nil {
		return false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[username]
	return ok, nil
}

func (m *MockCredentialStore) Get(ctx context.Context, username string) (*domain.CredentialRecord, error) {
	if err := m.fail(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[username]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

func (m *MockCredentialStore) Put(ctx context.Context, username string, record *domain.CredentialRecord) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[username] = *record
	return nil
}

func (m *MockCredentialStore) Delete(ctx context.Context, username string) error {
	if err := m.fail(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, username)
	return nil
}

func (m *MockCredentialStore) Ping(ctx context.Context) error {
	return m.fail()
}

// Len returns the number of stored records
func (m *MockCredentialStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
