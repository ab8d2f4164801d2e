package config

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func mapEnv(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(mapEnv(nil))
	require.NoError(t, err)

	assert.Equal(t, "User Manager", cfg.ServiceName)
	assert.Equal(t, DevelopmentSecret, cfg.SecretKey)
	assert.True(t, cfg.UsesDevelopmentSecret())
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, bcrypt.DefaultCost, cfg.BcryptCost)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
	assert.Equal(t, 20*time.Second, cfg.StartupTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(mapEnv(map[string]string{
		"SERVICE_NAME":                "Billing Users",
		"SECRET_KEY":                  "s3cr3t",
		"TOKEN_AUDIENCE":              "billing-web",
		"ACCESS_TOKEN_EXPIRE_MINUTES": "5",
		"BCRYPT_COST":                 "12",
		"PORT":                        "9000",
		"REDIS_URL":                   "redis://cache:6379/0",
		"EVENT_STREAM":                "billing:events",
		"STARTUP_TIMEOUT_SECONDS":     "3",
		"LOG_LEVEL":                   "debug",
		"LOG_FORMAT":                  "JSON",
		"CORS_ORIGINS":                "https://a.example, ,https://b.example",
	}))
	require.NoError(t, err)

	assert.Equal(t, "Billing Users", cfg.ServiceName)
	assert.False(t, cfg.UsesDevelopmentSecret())
	assert.Equal(t, "billing-web", cfg.TokenAudience)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, "billing:events", cfg.EventStream)
	assert.Equal(t, 3*time.Second, cfg.StartupTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoadFrom_InvalidInteger(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"letters", "ACCESS_TOKEN_EXPIRE_MINUTES", "abc"},
		{"trailing garbage", "PORT", "80abc"},
		{"decimal", "BCRYPT_COST", "10.5"},
		{"timeout", "STARTUP_TIMEOUT_SECONDS", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(mapEnv(map[string]string{tt.key: tt.val}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoadFrom_ReportsAllParseErrors(t *testing.T) {
	_, err := LoadFrom(mapEnv(map[string]string{
		"PORT":      "80abc",
		"LOG_LEVEL": "chatty",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoadFrom_IntegerWhitespace(t *testing.T) {
	cfg, err := LoadFrom(mapEnv(map[string]string{"PORT": " 9090 "}))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bcrypt cost too low", map[string]string{"BCRYPT_COST": "2"}, "BCRYPT_COST"},
		{"bcrypt cost too high", map[string]string{"BCRYPT_COST": "40"}, "BCRYPT_COST"},
		{"non-positive ttl", map[string]string{"ACCESS_TOKEN_EXPIRE_MINUTES": "0"}, "ACCESS_TOKEN_EXPIRE_MINUTES"},
		{"blank service name", map[string]string{"SERVICE_NAME": "   "}, "SERVICE_NAME"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
		{"unknown log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"unknown log level", map[string]string{"LOG_LEVEL": "chatty"}, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(mapEnv(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	cfg := Config{LogFormat: "json", LogLevel: slog.LevelWarn}
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "username", "alice")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"), "expected JSON output, got %q", out)
	assert.Contains(t, out, `"username":"alice"`)
}
