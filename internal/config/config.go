// Package config loads process configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// DevelopmentSecret is used when SECRET_KEY is unset. Never deploy with it.
const DevelopmentSecret = "development-secret-change-in-production"

// Config is read once at startup and never mutated afterwards
type Config struct {
	ServiceName    string        // SERVICE_NAME, display name; the token issuer derives from it
	RootPath       string        // ROOT_PATH, prefix when served behind a proxy
	SecretKey      string        // SECRET_KEY, HMAC signing secret
	TokenAudience  string        // TOKEN_AUDIENCE, empty selects "<issuer>-clients"
	AccessTokenTTL time.Duration // ACCESS_TOKEN_EXPIRE_MINUTES
	BcryptCost     int           // BCRYPT_COST

	Host        string   // HOST
	Port        int      // PORT
	CORSOrigins []string // CORS_ORIGINS, comma separated; empty disables CORS

	RedisURL       string        // REDIS_URL, primary credential store and event stream
	DatabaseURL    string        // DATABASE_URL, fallback credential store
	EventStream    string        // EVENT_STREAM
	StartupTimeout time.Duration // STARTUP_TIMEOUT_SECONDS, budget for reaching backends

	LogLevel  slog.Level // LOG_LEVEL: debug, info, warn, error
	LogFormat string     // LOG_FORMAT: text or json
}

// Load reads the configuration from the process environment
func Load() (Config, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom reads the configuration through getenv, for tests
func LoadFrom(getenv func(string) string) (Config, error) {
	e := &env{getenv: getenv}

	cfg := Config{
		ServiceName:    e.str("SERVICE_NAME", "User Manager"),
		RootPath:       e.str("ROOT_PATH", ""),
		SecretKey:      e.str("SECRET_KEY", DevelopmentSecret),
		TokenAudience:  e.str("TOKEN_AUDIENCE", ""),
		AccessTokenTTL: time.Duration(e.int("ACCESS_TOKEN_EXPIRE_MINUTES", 30)) * time.Minute,
		BcryptCost:     e.int("BCRYPT_COST", bcrypt.DefaultCost),
		Host:           e.str("HOST", "0.0.0.0"),
		Port:           e.int("PORT", 8080),
		RedisURL:       e.str("REDIS_URL", ""),
		DatabaseURL:    e.str("DATABASE_URL", ""),
		EventStream:    e.str("EVENT_STREAM", ""),
		StartupTimeout: time.Duration(e.int("STARTUP_TIMEOUT_SECONDS", 20)) * time.Second,
		LogFormat:      strings.ToLower(e.str("LOG_FORMAT", "text")),
		CORSOrigins:    e.list("CORS_ORIGINS"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(e.str("LOG_LEVEL", "info"))); err != nil {
		e.errs = append(e.errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	if err := errors.Join(e.errs...); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot start with
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ServiceName) == "" {
		errs = append(errs, errors.New("SERVICE_NAME must not be empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, errors.New("PORT must be within [1, 65535]"))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, errors.New("LOG_FORMAT must be text or json"))
	}
	return errors.Join(errs...)
}

// UsesDevelopmentSecret reports whether SECRET_KEY was left at its default
func (c Config) UsesDevelopmentSecret() bool {
	return c.SecretKey == DevelopmentSecret
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// NewLogger builds the process logger described by LOG_FORMAT and LOG_LEVEL
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// env reads variables and collects parse errors so every bad value is reported at once
type env struct {
	getenv func(string) string
	errs   []error
}

func (e *env) str(key, defaultValue string) string {
	if value := e.getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (e *env) list(key string) []string {
	var out []string
	for _, item := range strings.Split(e.getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (e *env) int(key string, defaultValue int) int {
	value := strings.TrimSpace(e.getenv(key))
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%s: %q is not an integer", key, value))
		return defaultValue
	}
	return result
}
