package mocks

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

var (
	_ driven.PasswordHasher = (*MockPasswordHasher)(nil)
	_ driven.TokenCodec     = (*MockTokenCodec)(nil)
)

// mockDigestPrefix marks digests produced by MockPasswordHasher
const mockDigestPrefix = "plain$"

// MockPasswordHasher stores passwords behind a marker prefix.
// NOT secure - only for testing.
type MockPasswordHasher struct{}

// NewMockPasswordHasher creates a new MockPasswordHasher
func NewMockPasswordHasher() *MockPasswordHasher {
	return &MockPasswordHasher{}
}

// Hash returns the password with a marker prefix
func (m *MockPasswordHasher) Hash(password string) (string, error) {
	return mockDigestPrefix + password, nil
}

// Verify compares the password with the digest; unmarked digests are corrupt
func (m *MockPasswordHasher) Verify(password, digest string) (bool, error) {
	stored, ok := strings.CutPrefix(digest, mockDigestPrefix)
	if !ok {
		return false, domain.ErrCorruptCredential
	}
	return stored == password, nil
}

// MockTokenCodec encodes claims as base64 JSON without a signature.
// NOT secure - only for testing.
type MockTokenCodec struct {
	Issuer     string
	Audience   string
	DefaultTTL time.Duration
	Now        func() time.Time

	seq atomic.Int64
}

// NewMockTokenCodec creates a MockTokenCodec with fixed issuer and audience
func NewMockTokenCodec() *MockTokenCodec {
	return &MockTokenCodec{
		Issuer:     "user-manager",
		Audience:   "user-manager-clients",
		DefaultTTL: 15 * time.Minute,
		Now:        time.Now,
	}
}

// Issue encodes a claim set for the subject
func (m *MockTokenCodec) Issue(subject string, ttl time.Duration) (string, error) {
	if ttl == 0 {
		ttl = m.DefaultTTL
	}
	now := m.Now()
	return m.Encode(&domain.ClaimSet{
		Subject:   subject,
		Issuer:    m.Issuer,
		Audience:  []string{m.Audience},
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
		ID:        fmt.Sprintf("mock-%d", m.seq.Add(1)),
	})
}

// Encode serializes arbitrary claims, for building foreign tokens in tests
func (m *MockTokenCodec) Encode(claims *domain.ClaimSet) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to marshal claims: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Verify decodes the token and checks issuer, audience and expiry
func (m *MockTokenCodec) Verify(token string) (*domain.ClaimSet, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, domain.ErrMalformedToken
	}

	var claims domain.ClaimSet
	if err := json.Unmarshal(data, &claims); err != nil || claims.Subject == "" {
		return nil, domain.ErrMalformedToken
	}

	if claims.Issuer != m.Issuer || len(claims.Audience) != 1 || claims.Audience[0] != m.Audience {
		return nil, domain.ErrClaimMismatch
	}
	if claims.IsExpired(m.Now()) {
		return nil, domain.ErrExpired
	}

	return &claims, nil
}
