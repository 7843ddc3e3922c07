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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: \"host=localhost\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, time.UTC, cfg.Booking.Location)
	assert.False(t, cfg.Booking.RequireFutureStart)
	assert.False(t, cfg.Invites.StrictTransitions)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "reservation.events", cfg.Notification.AMQPQueue)
	assert.Equal(t, time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, 15*time.Minute, cfg.Reminder.Lead)
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  cors_allowed_origins: ["http://localhost:5173"]
database:
  driver: sqlite
  dsn: "file:test.db"
booking:
  timezone: "Asia/Seoul"
  require_future_start: true
invites:
  strict_transitions: true
worker_pool:
  size: 4
reminder:
  enabled: true
  interval_seconds: 30
  lead_minutes: 5
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "Asia/Seoul", cfg.Booking.Location.String())
	assert.True(t, cfg.Booking.RequireFutureStart)
	assert.True(t, cfg.Invites.StrictTransitions)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
	assert.Equal(t, 30*time.Second, cfg.Reminder.Interval)
	assert.Equal(t, 5*time.Minute, cfg.Reminder.Lead)
}

func TestLoad_EnvOverridesSecrets(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: from-file\n")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_DSN", "file::memory:")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
}

func TestLoad_InvalidTimezone(t *testing.T) {
	path := writeConfig(t, "booking:\n  timezone: \"Nowhere/Never\"\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
