package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
auth:
  secret: s3cret
scheduling:
  reject_double_booking: true
  slot_cache_ttl: 2m
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "s3cret", cfg.Auth.Secret)
	assert.True(t, cfg.Scheduling.RejectDoubleBooking)
	assert.Equal(t, 2*time.Minute, cfg.Scheduling.SlotCacheTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "sub", cfg.Auth.Claims.UserID)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout)
	assert.Empty(t, cfg.Redis.URL)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
auth:
  secret: from-file
`)
	t.Setenv("HOSPITAL_PORT", "7070")
	t.Setenv("HOSPITAL_AUTH_SECRET", "from-env")
	t.Setenv("HOSPITAL_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("HOSPITAL_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_SecretRequiredOutsideDemoMode(t *testing.T) {
	_, err := Load(writeConfig(t, "log:\n  level: info\n"))
	assert.ErrorContains(t, err, "auth.secret")

	cfg, err := Load(writeConfig(t, "auth:\n  demo_mode: true\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Auth.DemoMode)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		Server:    ServerConfig{Port: 0},
		Log:       LogConfig{Level: "loud", Format: "xml"},
		RateLimit: RateLimitConfig{Enabled: true},
		Notifications: NotificationsConfig{
			SMTP: SMTPConfig{Host: "smtp.example"},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"server.port", "log.level", "log.format", "auth.secret", "rate_limit", "smtp.from"} {
		assert.ErrorContains(t, err, want)
	}
}
