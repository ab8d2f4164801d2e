package driven

import (
	"time"

	"github.com/custodia-labs/user-manager/internal/core/domain"
)

// PasswordHasher isolates the password hashing scheme.
// Digests are self-describing: algorithm, cost and salt live in the string.
type PasswordHasher interface {
	// Hash returns a salted digest of the plaintext
	Hash(password string) (string, error)

	// Verify reports whether the plaintext matches the digest.
	// A wrong password is (false, nil); a malformed digest is domain.ErrCorruptCredential.
	Verify(password, digest string) (bool, error)
}

// TokenCodec builds and parses signed session tokens.
// It owns the claim schema, the signing key and the algorithm.
type TokenCodec interface {
	// Issue signs a token for the subject. A zero ttl selects the codec default.
	Issue(subject string, ttl time.Duration) (string, error)

	// Verify checks signature, issuer, audience and expiry and returns the claims.
	// Errors: domain.ErrMalformedToken, domain.ErrClaimMismatch, domain.ErrExpired.
	Verify(token string) (*domain.ClaimSet, error)
}
