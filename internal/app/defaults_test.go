package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	t.Run("uses env vars when set", func(t *testing.T) {
		t.Setenv("FLIPBUTTON_CONFIG_PATH", "/custom/config.toml")
		t.Setenv("FLIPBUTTON_HOME", "/custom/flipbutton")
		t.Setenv("FLIPBUTTON_START_DIR", "/custom/images")
		t.Setenv("FLIPBUTTON_LOG_LEVEL", "debug")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		want := map[string]string{
			"config_path": "/custom/config.toml",
			"base_dir":    "/custom/flipbutton",
			"log_dir":     "/custom/flipbutton/log",
			"start_dir":   "/custom/images",
			"log_level":   "debug",
		}
		for key, w := range want {
			if defaults[key] != w {
				t.Errorf("%s = %q, want %q", key, defaults[key], w)
			}
		}
	})

	t.Run("falls back to home dir defaults", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		t.Setenv("FLIPBUTTON_CONFIG_PATH", "")
		t.Setenv("FLIPBUTTON_HOME", "")
		t.Setenv("FLIPBUTTON_START_DIR", "")
		t.Setenv("FLIPBUTTON_LOG_LEVEL", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}

		wantBase := filepath.Join(home, ".local", "share", "flipbutton")
		want := map[string]string{
			"config_path": filepath.Join(home, ".config", "flipbutton.toml"),
			"base_dir":    wantBase,
			"log_dir":     filepath.Join(wantBase, "log"),
			"start_dir":   home,
			"log_level":   "info",
		}
		for key, w := range want {
			if defaults[key] != w {
				t.Errorf("%s = %q, want %q", key, defaults[key], w)
			}
		}
	})

	t.Run("picker starts in Pictures when it exists", func(t *testing.T) {
		home := t.TempDir()
		pictures := filepath.Join(home, "Pictures")
		if err := os.Mkdir(pictures, 0755); err != nil {
			t.Fatal(err)
		}
		t.Setenv("HOME", home)
		t.Setenv("FLIPBUTTON_START_DIR", "")

		defaults, err := GetDefaults()
		if err != nil {
			t.Fatalf("GetDefaults() error = %v", err)
		}
		if defaults["start_dir"] != pictures {
			t.Errorf("start_dir = %q, want %q", defaults["start_dir"], pictures)
		}
	})

	t.Run("rejects an invalid log level", func(t *testing.T) {
		t.Setenv("FLIPBUTTON_LOG_LEVEL", "chatty")

		if _, err := GetDefaults(); err == nil {
			t.Error("GetDefaults() accepted log level chatty")
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("FLIPBUTTON_CONFIG_PATH", "/etc/flip.toml")
	t.Setenv("FLIPBUTTON_HOME", "/srv/flipbutton")
	t.Setenv("FLIPBUTTON_START_DIR", "/srv/images")
	t.Setenv("FLIPBUTTON_LOG_LEVEL", "warn")

	cfg, path, err := DefaultConfig()
	if err != nil {
		t.Fatalf("DefaultConfig() error = %v", err)
	}
	if path != "/etc/flip.toml" {
		t.Errorf("config path = %q, want /etc/flip.toml", path)
	}
	if cfg.BaseDir != "/srv/flipbutton" || cfg.LogDir != "/srv/flipbutton/log" {
		t.Errorf("BaseDir, LogDir = %q, %q", cfg.BaseDir, cfg.LogDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.Uploads.StartDir != "/srv/images" {
		t.Errorf("Uploads.StartDir = %q, want /srv/images", cfg.Uploads.StartDir)
	}
	if cfg.Vault.FSVaultRoot != "/srv/flipbutton/vault" {
		t.Errorf("Vault.FSVaultRoot = %q, want /srv/flipbutton/vault", cfg.Vault.FSVaultRoot)
	}
}
