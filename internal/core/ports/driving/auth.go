package driving

import (
	"context"

	"github.com/custodia-labs/user-manager/internal/core/domain"
)

// AuthService handles registration and authentication
type AuthService interface {
	// Register creates a credential record and returns its public view
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.PublicUser, error)

	// Authenticate checks a username/password pair and returns the stored record
	Authenticate(ctx context.Context, username, password string) (*domain.CredentialRecord, error)

	// Login authenticates and issues a bearer token
	Login(ctx context.Context, req domain.LoginRequest) (*domain.TokenResponse, error)

	// Exists reports whether a username is taken
	Exists(ctx context.Context, username string) (bool, error)

	// ResolveCurrentUser validates a token and returns the user it belongs to
	ResolveCurrentUser(ctx context.Context, token string) (*domain.PublicUser, error)
}
