package cli

import (
	"path/filepath"
	"testing"

	"spendfy/internal/backend"
	"spendfy/internal/config"
	"spendfy/internal/log"

	"github.com/stretchr/testify/assert"
)

func TestSetupLogger(t *testing.T) {
	cfg := &config.Config{LogLevel: "not-a-level", LogFormat: "json"}
	logger := SetupLogger(cfg, log.ComponentWorker)
	assert.Equal(t, log.ComponentWorker, logger.Component())
}

func TestBackendConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spendfy.db")
	cfg := &config.Config{
		DataBackend:  config.BackendSQLite,
		SQLiteDBPath: path,
		AMQPExchange: "spendfy",
		AMQPQueue:    "spendfy_events",
	}
	got := BackendConfig(log.New(log.DefaultConfig()), cfg)
	assert.Equal(t, backend.SQLiteBackend, got.Type)
	assert.Equal(t, path, got.SQLiteDBPath)
	assert.Empty(t, got.AMQPURL)
}
