package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.Booking.HoldWindow.Duration)
	assert.Equal(t, 15, cfg.Booking.SlotStepMinutes)
	assert.Equal(t, time.Minute, cfg.Booking.ReconcileInterval.Duration)
	assert.Equal(t, "postgres", cfg.Database.StorageDriver)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeTOML(t, `
[server]
port = "9090"
timezone = "Europe/Madrid"

[database]
storage_driver = "memory"

[booking]
hold_window = "15m"
slot_step_minutes = 30
`)
	t.Setenv("BOOKING_SLOT_STEP_MINUTES", "20")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "Europe/Madrid", cfg.Server.Timezone)
	assert.Equal(t, "memory", cfg.Database.StorageDriver)
	assert.Equal(t, 15*time.Minute, cfg.Booking.HoldWindow.Duration)
	assert.Equal(t, 20, cfg.Booking.SlotStepMinutes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeTOML(t, "[database]\nstorage_driver = \"sqlite\"\n"))
	assert.Error(t, err)

	_, err = Load(writeTOML(t, "[booking]\nhold_window = \"soon\"\n"))
	assert.Error(t, err)

	t.Setenv("BOOKING_RECONCILE_BATCH", "many")
	_, err = Load("")
	assert.Error(t, err)
}
