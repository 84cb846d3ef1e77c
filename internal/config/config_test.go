package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("CONFIG_ENV", "missing")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 4, cfg.Room.CodeLength)
	assert.Equal(t, 5*time.Second, cfg.Room.GracePeriod)
	assert.Equal(t, 500, cfg.Room.MaxMessageLength)
	assert.Equal(t, 54*time.Second, cfg.PingPeriod)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := []byte("port: 9090\nroom:\n  grace_period: 2s\n  code_length: 6\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), yaml, 0o644))
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("LOUNGE_ROOM_MAX_MESSAGE_LENGTH", "120")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 2*time.Second, cfg.Room.GracePeriod)
	assert.Equal(t, 6, cfg.Room.CodeLength)
	assert.Equal(t, 120, cfg.Room.MaxMessageLength)
}

func TestValidate(t *testing.T) {
	cfg := Config{Room: RoomConfig{CodeLength: 0}, WS: WSConfig{SendBuffer: 1}}
	assert.Error(t, cfg.Validate())

	cfg.Room.CodeLength = 4
	cfg.Room.GracePeriod = -time.Second
	assert.Error(t, cfg.Validate())

	cfg.Room.GracePeriod = time.Second
	assert.NoError(t, cfg.Validate())
}
