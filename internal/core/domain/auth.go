package domain

import (
	"strings"
	"time"
)

// TokenTypeBearer is the only token type issued
const TokenTypeBearer = "bearer"

// ClaimSet is the payload carried inside a session token
type ClaimSet struct {
	Subject   string    `json:"sub"`
	Issuer    string    `json:"iss"`
	Audience  []string  `json:"aud"`
	ExpiresAt time.Time `json:"exp"`
	IssuedAt  time.Time `json:"iat"`
	ID        string    `json:"jti"`
}

// IsExpired reports whether the claims are no longer valid at the given time.
// A token is valid only while now is strictly before exp.
func (c *ClaimSet) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned after successful authentication
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// NormalizeServiceName derives the token issuer from a display name:
// lower-cased with spaces replaced by hyphens.
func NormalizeServiceName(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}
