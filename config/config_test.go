package config

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setProductionEnv keeps Load from picking up a developer's .env file.
func setProductionEnv(t *testing.T) {
	t.Helper()
	t.Setenv("GO_ENV", "production")
	t.Setenv("CONFIG_FILE", "")
	for _, key := range []string{
		"PORT", "DATABASE_URL", "JWT_SECRET", "JWT_EXPIRY", "BCRYPT_COST",
		"CORS_ALLOWED_ORIGINS", "LOGIN_RATE_PER_MINUTE", "MAIL_PROVIDER",
		"DB_PING_TIMEOUT", "REQUEST_TIMEOUT", "AWS_INSECURE_SKIP_VERIFY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_requires_jwt_secret(t *testing.T) {
	setProductionEnv(t)

	_, err := Load()
	require.ErrorIs(t, err, ErrMissingJWTSecret)
}

func TestLoad_defaults(t *testing.T) {
	setProductionEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.Environment)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, 10, cfg.LoginRatePerMinute)
	assert.Equal(t, "noop", cfg.Mail.Provider)
	assert.NotEmpty(t, cfg.DBUrl)
}

func TestLoad_env_overrides(t *testing.T) {
	setProductionEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("JWT_EXPIRY", "2h")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("MAIL_PROVIDER", "ses")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "ses", cfg.Mail.Provider)
}

func TestLoad_invalid_values(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad duration", "JWT_EXPIRY", "soon"},
		{"bad int", "BCRYPT_COST", "many"},
		{"cost out of range", "BCRYPT_COST", "40"},
		{"negative expiry", "JWT_EXPIRY", "-1h"},
		{"zero request timeout", "REQUEST_TIMEOUT", "0s"},
		{"bad bool", "AWS_INSECURE_SKIP_VERIFY", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setProductionEnv(t)
			t.Setenv("JWT_SECRET", "s3cret")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_config_file_then_env(t *testing.T) {
	setProductionEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "7070"
jwt_secret: from-file
jwt_expiry: 30m
login_rate_per_minute: 3
mail:
  provider: resend
  resend_api_key: re_123
`), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "7171")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7171", cfg.Port)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.JWTExpiry)
	assert.Equal(t, 3, cfg.LoginRatePerMinute)
	assert.Equal(t, "resend", cfg.Mail.Provider)
	assert.Equal(t, "re_123", cfg.Mail.ResendAPIKey)
}

func TestLoad_missing_config_file(t *testing.T) {
	setProductionEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestNewLogger_format_and_level(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "production", "warn")

	logger.Info("dropped")
	logger.Warn("kept", "k", "v")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "v", line["k"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel(""))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
