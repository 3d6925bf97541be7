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

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
# session services config
ledger:
  host: db.internal
  port: 5433
  user: ledger
  password: "s3cret"
  database: ledger

rabbitmq:
  host: mq.internal
  port: 5672
  user: guest
  password: "guest"

stream:
  url: ws://sim:8000/ws
  source: rabbitmq

session:
  address: "0xC94770007dda54cF92009BFF0dE90c06f603a09f"

poll:
  interval_ms: 250

services:
  session_service: 4100
  relay_service: 4101

jwt:
  secret_key: "unit-test-secret"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Ledger.Host)
	assert.Equal(t, 5433, cfg.Ledger.Port)
	assert.Equal(t, "s3cret", cfg.Ledger.Password, "quotes are stripped")
	assert.Equal(t, "rabbitmq", cfg.Stream.Source)
	assert.Equal(t, "ws://sim:8000/ws", cfg.Stream.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 4100, cfg.Services.SessionServicePort)
	assert.Equal(t, "unit-test-secret", cfg.JWT.SecretKey)
}

func TestLoadFromFileDefaults(t *testing.T) {
	path := writeConfig(t, `
session:
  address: "0xrider"
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Ledger.Host)
	assert.Equal(t, 5432, cfg.Ledger.Port)
	assert.Equal(t, "ws://localhost:8000/ws", cfg.Stream.URL)
	assert.Equal(t, "websocket", cfg.Stream.Source)
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
	assert.Equal(t, 3100, cfg.Services.SessionServicePort)
	assert.Equal(t, 3101, cfg.Services.RelayServicePort)
	assert.NotEmpty(t, cfg.JWT.SecretKey, "a random secret is seeded when none is configured")
}

func TestLoadFromFileRejectsBadInput(t *testing.T) {
	// missing session address
	_, err := LoadFromFile(writeConfig(t, "poll:\n  interval_ms: 100\n"))
	assert.ErrorContains(t, err, "session.address")

	// unknown top-level section
	_, err = LoadFromFile(writeConfig(t, "database:\n  host: x\n"))
	assert.ErrorContains(t, err, "unknown top-level key")

	// duplicate section
	_, err = LoadFromFile(writeConfig(t, "session:\n  address: a\nsession:\n  address: b\n"))
	assert.ErrorContains(t, err, "duplicate")

	// bad stream source
	_, err = LoadFromFile(writeConfig(t, "session:\n  address: a\nstream:\n  source: carrier-pigeon\n"))
	assert.ErrorContains(t, err, "stream.source")
}
