package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
)

// Ensure Codec implements TokenCodec
var _ driven.TokenCodec = (*Codec)(nil)

// DefaultTokenTTL applies when Issue is called with a zero ttl
const DefaultTokenTTL = 15 * time.Minute

// CodecConfig holds the immutable signing configuration
type CodecConfig struct {
	// Secret is the HMAC key shared by Issue and Verify
	Secret []byte

	// ServiceName is the display name the issuer is derived from
	ServiceName string

	// Audience is the accepted audience (default: "<issuer>-clients")
	Audience string

	// DefaultTTL replaces a zero ttl (default: 15m)
	DefaultTTL time.Duration

	// Now overrides the clock, for tests
	Now func() time.Time
}

// Codec signs and verifies HS256 session tokens
type Codec struct {
	secret     []byte
	issuer     string
	audience   string
	defaultTTL time.Duration
	now        func() time.Time
	parser     *jwt.Parser
}

// NewCodec creates a token codec. The secret is copied, so later changes
// to the caller's slice do not affect signing.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}

	issuer := domain.NormalizeServiceName(cfg.ServiceName)
	if issuer == "" {
		return nil, errors.New("service name is required")
	}

	audience := cfg.Audience
	if audience == "" {
		audience = issuer + "-clients"
	}

	ttl := cfg.DefaultTTL
	if ttl == 0 {
		ttl = DefaultTokenTTL
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	c := &Codec{
		secret:     append([]byte(nil), cfg.Secret...),
		issuer:     issuer,
		audience:   audience,
		defaultTTL: ttl,
		now:        now,
	}
	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)
	return c, nil
}

// Issuer returns the iss value stamped on every token
func (c *Codec) Issuer() string {
	return c.issuer
}

// Audience returns the aud value stamped on every token
func (c *Codec) Audience() string {
	return c.audience
}

// Issue signs a token for the subject with a fresh jti.
// A negative ttl yields a token that is already expired.
func (c *Codec) Issue(subject string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: empty subject", domain.ErrInvalidInput)
	}
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	now := c.now().Truncate(jwt.TimePrecision)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    c.issuer,
		Audience:  jwt.ClaimStrings{c.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify parses the token and checks signature, algorithm, issuer,
// audience and expiry, in that order of precedence.
func (c *Codec) Verify(tokenString string) (*domain.ClaimSet, error) {
	var claims jwt.RegisteredClaims
	_, err := c.parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, classify(err)
	}

	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: missing sub or jti", domain.ErrMalformedToken)
	}

	set := &domain.ClaimSet{
		Subject:   claims.Subject,
		Issuer:    claims.Issuer,
		Audience:  []string(claims.Audience),
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}
	if claims.IssuedAt != nil {
		set.IssuedAt = claims.IssuedAt.Time
	}
	return set, nil
}

// classify maps jwt parser errors onto the domain taxonomy.
// Signature and structure failures are reported before claim failures.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenInvalidIssuer),
		errors.Is(err, jwt.ErrTokenInvalidAudience):
		return fmt.Errorf("%w: %v", domain.ErrClaimMismatch, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrExpired, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	}
}
