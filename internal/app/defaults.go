package app

import (
	"fmt"
	"os"
	"path/filepath"

	"flipbutton/internal/config"
)

// GetDefaults returns application default paths and settings, checking
// environment variables first.
// Environment variables:
//   - FLIPBUTTON_CONFIG_PATH: config file location (default: ~/.config/flipbutton.toml)
//   - FLIPBUTTON_HOME: base directory for stored assets (default: ~/.local/share/flipbutton)
//   - FLIPBUTTON_START_DIR: where the image picker opens (default: ~/Pictures, else ~)
//   - FLIPBUTTON_LOG_LEVEL: debug, info, warn or error (default: info)
func GetDefaults() (map[string]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	baseDir := envOr("FLIPBUTTON_HOME", filepath.Join(homeDir, ".local", "share", "flipbutton"))

	logLevel := envOr("FLIPBUTTON_LOG_LEVEL", "info")
	if _, err := ParseLevel(logLevel); err != nil {
		return nil, fmt.Errorf("FLIPBUTTON_LOG_LEVEL: %w", err)
	}

	return map[string]string{
		"config_path": envOr("FLIPBUTTON_CONFIG_PATH", filepath.Join(homeDir, ".config", "flipbutton.toml")),
		"base_dir":    baseDir,
		"log_dir":     filepath.Join(baseDir, "log"),
		"log_level":   logLevel,
		"start_dir":   envOr("FLIPBUTTON_START_DIR", pictureDir(homeDir)),
	}, nil
}

// DefaultConfig builds the config written by `config init` from GetDefaults.
func DefaultConfig() (*config.Config, string, error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, "", err
	}

	cfg := config.NewConfig(defaults["base_dir"])
	cfg.LogDir = defaults["log_dir"]
	cfg.LogLevel = defaults["log_level"]
	cfg.Uploads.StartDir = defaults["start_dir"]
	return cfg, defaults["config_path"], nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// pictureDir prefers ~/Pictures when it exists.
func pictureDir(homeDir string) string {
	p := filepath.Join(homeDir, "Pictures")
	if info, err := os.Stat(p); err == nil && info.IsDir() {
		return p
	}
	return homeDir
}
