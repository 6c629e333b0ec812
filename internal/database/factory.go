package database

import (
	"fmt"
	"os"
	"path/filepath"

	"flipbutton/internal/button"
	"flipbutton/internal/config"
)

// DatabaseFile is the name of the SQLite file inside the data directory.
const DatabaseFile = "buttons.db"

// NewStoreFromConfig creates an asset store based on the database config type.
func NewStoreFromConfig(cfg config.DatabaseConfig, vault button.Vault, opts ...Option) (*SQLiteStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data dir: %w", err)
		}
		return NewSQLiteStore(filepath.Join(cfg.DataDir, DatabaseFile), vault, opts...), nil
	case "memory":
		return NewSQLiteStore(":memory:", vault, opts...), nil
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
