package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.json"), []byte(content), 0o600))
	return dir
}

func TestReadConfig(t *testing.T) {
	dir := writeConfig(t, `{
		"service_name": "orchestrator-service",
		"port": "9090",
		"database": {"host": "db", "port": 5432, "user": "orchestrator", "password": "secret", "database": "sagas", "ssl_mode": "disable"},
		"engine": {"default_max_retries": 5, "retry_backoff": "500ms"},
		"reconciliation": {"enabled": true, "interval": "30s"}
	}`)
	t.Setenv("DATABASE_URL", "")
	t.Setenv("ORCHESTRATOR_ENGINE_RETRY_BACKOFF", "3s")
	t.Setenv("ORCHESTRATOR_REDIS_ADDR", "cache:6379")

	cfg, err := readConfig(dir, "test")
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.Engine.DefaultMaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Engine.RetryBackoff)
	assert.Equal(t, 30*time.Second, cfg.Reconciliation.Interval)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 24*time.Hour, cfg.Redis.DedupeTTL)
	assert.Equal(t, int32(30), cfg.AWS.Workers)
	assert.Equal(t, int32(15), cfg.AWS.WaitTimeSeconds)
	assert.Equal(t, "postgres://orchestrator:secret@db:5432/sagas?sslmode=disable", cfg.GetDatabaseURL())
}

func TestReadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative retries", content: `{"engine": {"default_max_retries": -1}}`},
		{name: "zero interval", content: `{"reconciliation": {"enabled": true, "interval": "0s"}}`},
		{name: "malformed json", content: `{`},
		{name: "backoff equals visibility timeout", content: `{"engine": {"retry_backoff": "30s"}}`},
		{name: "backoff above visibility timeout", content: `{"engine": {"retry_backoff": "3s"}, "aws": {"visibility_timeout": 2}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readConfig(writeConfig(t, tt.content), "test")
			assert.Error(t, err)
		})
	}
}

func TestGetDatabaseURL_PrefersURL(t *testing.T) {
	cfg := &Config{Database: Database{URL: "postgres://elsewhere/db", Host: "ignored"}}

	assert.Equal(t, "postgres://elsewhere/db", cfg.GetDatabaseURL())
}
