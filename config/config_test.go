package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Setenv("CONFIG_PATH", path)
}

func TestLoadConfigDefaults(t *testing.T) {
	writeConfig(t, "http:\n  addr: \":4000\"\n")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":4000", cfg.HTTP.Addr)
	assert.Equal(t, "relay-service", cfg.Logging.Service)
	assert.Equal(t, "dev", cfg.Logging.Env)
	assert.Equal(t, "std", cfg.Logging.Backend)
	assert.Equal(t, int64(64<<10), cfg.WS.MaxMessageBytes)
	assert.Equal(t, 256, cfg.WS.SendBuffer)
	assert.Equal(t, 4000, cfg.WS.MaxBodyChars)
	assert.Equal(t, 15*time.Second, cfg.WS.PingEvery())
	assert.Equal(t, 5*time.Second, cfg.WS.WriteWait())
}

func TestLoadConfigMissingAddr(t *testing.T) {
	writeConfig(t, "logging:\n  env: prod\n")

	_, err := LoadConfig()
	assert.EqualError(t, err, "http.addr is required")
}

func TestWSDurationOverrides(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":4000"
ws:
  pingInterval: 30s
  writeTimeout: 2s
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.WS.PingEvery())
	assert.Equal(t, 2*time.Second, cfg.WS.WriteWait())
}

func TestWSDurationGarbageFallsBack(t *testing.T) {
	writeConfig(t, `
http:
  addr: ":4000"
ws:
  pingInterval: soon
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 15*time.Second, cfg.WS.PingEvery())
}
