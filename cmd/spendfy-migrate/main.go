// Command spendfy-migrate applies pending schema migrations and exits.
package main

import (
	"os"
	"path/filepath"

	"spendfy/internal/backend"
	"spendfy/internal/cli"
	"spendfy/internal/config"
	"spendfy/internal/log"
	"spendfy/internal/storage"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg, log.ComponentMigrate)
	backendCfg := cli.BackendConfig(logger, cfg)

	if backendCfg.Type == backend.SQLiteBackend {
		if err := os.MkdirAll(filepath.Dir(backendCfg.SQLiteDBPath), 0o755); err != nil {
			logger.Error("Failed to create database directory", "error", err)
			os.Exit(1)
		}
	}

	if err := storage.RunMigrations(backendCfg.Type.Dialect(), backendCfg.MigrationDSN()); err != nil {
		logger.Error("Migration failed", "error", err, "backend", backendCfg.Type.String())
		os.Exit(1)
	}
	logger.Info("Migrations applied", "backend", backendCfg.Type.String())
}
