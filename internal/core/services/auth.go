package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/custodia-labs/user-manager/internal/core/domain"
	"github.com/custodia-labs/user-manager/internal/core/ports/driven"
	"github.com/custodia-labs/user-manager/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

const (
	// DefaultAccessTokenTTL is the lifetime of tokens issued by Login
	DefaultAccessTokenTTL = 30 * time.Minute

	// DefaultNotifyTimeout bounds a single event delivery
	DefaultNotifyTimeout = 2 * time.Second

	tracerName = "github.com/custodia-labs/user-manager/internal/core/services"
)

// AuthServiceConfig holds the dependencies of the authentication service
type AuthServiceConfig struct {
	Store    driven.CredentialStore
	Hasher   driven.PasswordHasher
	Codec    driven.TokenCodec
	Notifier driven.EventNotifier // Optional: registration events are dropped when nil
	Logger   *slog.Logger
	Tracer   trace.Tracer // Optional: defaults to the global tracer provider

	AccessTokenTTL time.Duration // Lifetime of tokens issued by Login (default: 30m)
	NotifyTimeout  time.Duration // Upper bound for one notification (default: 2s)
	Now            func() time.Time
}

// authService implements the AuthService interface
type authService struct {
	store    driven.CredentialStore
	hasher   driven.PasswordHasher
	codec    driven.TokenCodec
	notifier driven.EventNotifier
	logger   *slog.Logger
	tracer   trace.Tracer

	tokenTTL      time.Duration
	notifyTimeout time.Duration
	now           func() time.Time
}

// NewAuthService creates a new AuthService
func NewAuthService(cfg AuthServiceConfig) driving.AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	tokenTTL := cfg.AccessTokenTTL
	if tokenTTL == 0 {
		tokenTTL = DefaultAccessTokenTTL
	}

	notifyTimeout := cfg.NotifyTimeout
	if notifyTimeout == 0 {
		notifyTimeout = DefaultNotifyTimeout
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &authService{
		store:         cfg.Store,
		hasher:        cfg.Hasher,
		codec:         cfg.Codec,
		notifier:      cfg.Notifier,
		logger:        logger,
		tracer:        tracer,
		tokenTTL:      tokenTTL,
		notifyTimeout: notifyTimeout,
		now:           now,
	}
}

// Register creates a credential record. Duplicate detection is check-then-act:
// concurrent registrations of one username may both succeed, the store keeps
// the last write.
func (s *authService) Register(ctx context.Context, req domain.RegisterRequest) (_ *domain.PublicUser, err error) {
	ctx, span := s.startSpan(ctx, "auth.Register", req.Username)
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAlreadyExists
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	record := &domain.CredentialRecord{
		Username:       req.Username,
		FullName:       req.FullName,
		HashedPassword: digest,
	}
	if err := s.store.Put(ctx, req.Username, record); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "username", req.Username)
	s.notify(ctx, domain.NewUserRegistered(req.Username, s.now()))

	return record.ToPublic(), nil
}

// Authenticate checks a username/password pair. Failures are always typed:
// domain.ErrNotFound and domain.ErrBadCredentials stay distinct here and are
// coalesced only at the HTTP boundary.
func (s *authService) Authenticate(ctx context.Context, username, password string) (_ *domain.CredentialRecord, err error) {
	ctx, span := s.startSpan(ctx, "auth.Authenticate", username)
	defer func() { endSpan(span, err) }()

	return s.authenticate(ctx, username, password)
}

func (s *authService) authenticate(ctx context.Context, username, password string) (*domain.CredentialRecord, error) {
	record, err := s.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(password, record.HashedPassword)
	if err != nil {
		return nil, fmt.Errorf("verify password for %s: %w", username, err)
	}
	if !ok {
		return nil, domain.ErrBadCredentials
	}

	return record, nil
}

// Login authenticates and issues a bearer token
func (s *authService) Login(ctx context.Context, req domain.LoginRequest) (_ *domain.TokenResponse, err error) {
	ctx, span := s.startSpan(ctx, "auth.Login", req.Username)
	defer func() { endSpan(span, err) }()

	record, err := s.authenticate(ctx, req.Username, req.Password)
	if err != nil {
		s.logger.Info("login failed", "username", req.Username, "reason", domain.ErrorKind(err))
		return nil, err
	}

	token, err := s.codec.Issue(record.Username, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   domain.TokenTypeBearer,
	}, nil
}

// Exists reports whether a username is taken
func (s *authService) Exists(ctx context.Context, username string) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "auth.Exists", username)
	defer func() { endSpan(span, err) }()

	return s.store.Exists(ctx, username)
}

// ResolveCurrentUser validates the token and re-reads the subject's record.
// Nothing is cached, so deleted and disabled accounts are rejected at once.
func (s *authService) ResolveCurrentUser(ctx context.Context, token string) (_ *domain.PublicUser, err error) {
	ctx, span := s.startSpan(ctx, "auth.ResolveCurrentUser", "")
	defer func() { endSpan(span, err) }()

	if token == "" {
		return nil, domain.ErrMalformedToken
	}

	claims, err := s.codec.Verify(token)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("user.name", claims.Subject),
		attribute.String("token.id", claims.ID),
	)

	record, err := s.store.Get(ctx, claims.Subject)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}

	if record.IsDisabled() {
		return nil, domain.ErrInactiveAccount
	}

	return record.ToPublic(), nil
}

// notify delivers an event without letting a slow or failing sink affect the caller
func (s *authService) notify(ctx context.Context, event domain.UserEvent) {
	if s.notifier == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	if err := s.notifier.Notify(ctx, event); err != nil {
		s.logger.Warn("failed to publish user event",
			"type", event.Type,
			"username", event.Username,
			"error", err)
	}
}

func (s *authService) startSpan(ctx context.Context, name, username string) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	if username != "" {
		span.SetAttributes(attribute.String("user.name", username))
	}
	return ctx, span
}

// endSpan records the error kind, never the error text, which may echo input
func endSpan(span trace.Span, err error) {
	if err != nil {
		kind := domain.ErrorKind(err)
		span.SetAttributes(attribute.String("error.kind", kind))
		span.SetStatus(codes.Error, kind)
	}
	span.End()
}
