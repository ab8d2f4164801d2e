package driven

import (
	"context"

	"github.com/custodia-labs/user-manager/internal/core/domain"
)

// CredentialStore handles credential record persistence (Redis or PostgreSQL).
// Records are keyed by username. Writes are last-write-wins; concurrent
// writes to the same username are not serialized.
// Backend failures satisfy errors.Is(err, domain.ErrStoreUnavailable).
type CredentialStore interface {
	// Exists reports whether a record is stored for the username
	Exists(ctx context.Context, username string) (bool, error)

	// Get retrieves a record, returning domain.ErrNotFound when absent
	Get(ctx context.Context, username string) (*domain.CredentialRecord, error)

	// Put stores a record, overwriting any previous value
	Put(ctx context.Context, username string, record *domain.CredentialRecord) error

	// Delete removes a record. Deleting a missing record is not an error.
	Delete(ctx context.Context, username string) error

	// Ping checks if the backend is reachable
	Ping(ctx context.Context) error
}
