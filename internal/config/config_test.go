package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		BaseDir:  "/home/user/.local/share/flipbutton",
		LogDir:   "/home/user/.local/share/flipbutton/log",
		LogLevel: "debug",
		Database: DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/flipbutton/db"},
		Vault: VaultConfig{
			Type:       "s3",
			Name:       "remote",
			S3Bucket:   "buttons",
			S3Prefix:   "faces/",
			S3Region:   "eu-west-1",
			S3Endpoint: "http://localhost:9000",
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  "/home/user/.local/share/flipbutton/keys/flipbutton.pub",
			PrivateKeyPath: "/home/user/.local/share/flipbutton/keys/flipbutton.key",
		},
		Uploads: UploadsConfig{
			MaxTransientSize: 2048,
			StartDir:         "/home/user/Pictures",
			Ignore:           []string{"*.tmp", ".cache/*"},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", got.LogLevel, "debug")
	}
	if got.Database != original.Database {
		t.Errorf("Database = %+v, want %+v", got.Database, original.Database)
	}
	if got.Vault != original.Vault {
		t.Errorf("Vault = %+v, want %+v", got.Vault, original.Vault)
	}
	if got.Encryption != original.Encryption {
		t.Errorf("Encryption = %+v, want %+v", got.Encryption, original.Encryption)
	}
	if got.Uploads.MaxTransientSize != 2048 {
		t.Errorf("Uploads.MaxTransientSize = %d, want %d", got.Uploads.MaxTransientSize, 2048)
	}
	if got.Uploads.StartDir != "/home/user/Pictures" {
		t.Errorf("Uploads.StartDir = %q, want %q", got.Uploads.StartDir, "/home/user/Pictures")
	}
	if len(got.Uploads.Ignore) != 2 {
		t.Fatalf("len(Uploads.Ignore) = %d, want 2", len(got.Uploads.Ignore))
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/flipbutton")

	if cfg.BaseDir != "/data/flipbutton" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/flipbutton")
	}
	if cfg.LogDir != "/data/flipbutton/log" {
		t.Errorf("LogDir = %q, want %q", cfg.LogDir, "/data/flipbutton/log")
	}
	if cfg.Database.Type != "sqlite" || cfg.Database.DataDir != "/data/flipbutton/db" {
		t.Errorf("Database = %+v", cfg.Database)
	}
	if cfg.Vault.Type != "filesystem" || cfg.Vault.FSVaultRoot != "/data/flipbutton/vault" {
		t.Errorf("Vault = %+v", cfg.Vault)
	}
	if cfg.Encryption.Type != "none" {
		t.Errorf("Encryption.Type = %q, want %q", cfg.Encryption.Type, "none")
	}
	if cfg.Encryption.PublicKeyPath != "/data/flipbutton/keys/flipbutton.pub" {
		t.Errorf("Encryption.PublicKeyPath = %q", cfg.Encryption.PublicKeyPath)
	}
	if cfg.Uploads.MaxTransientSize <= 0 {
		t.Errorf("Uploads.MaxTransientSize = %d, want positive", cfg.Uploads.MaxTransientSize)
	}
}

func TestInit(t *testing.T) {
	t.Run("creates config file", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "flipbutton.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not created: %v", err)
		}
	})

	t.Run("fails if file already exists", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "flipbutton.toml")
		cfg := NewConfig(dir)

		if err := Init(path, cfg); err != nil {
			t.Fatalf("first Init() error = %v", err)
		}

		err := Init(path, cfg)
		if err == nil {
			t.Fatal("second Init() expected error")
		}
	})
}

func TestReadFromFile(t *testing.T) {
	t.Run("reads valid config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "flipbutton.toml")
		cfg := NewConfig(dir)
		cfg.Database = DatabaseConfig{Type: "memory"}

		if err := Init(path, cfg); err != nil {
			t.Fatalf("Init() error = %v", err)
		}

		got, err := ReadFromFile(path)
		if err != nil {
			t.Fatalf("ReadFromFile() error = %v", err)
		}
		if got.Database.Type != "memory" {
			t.Errorf("Database.Type = %q, want %q", got.Database.Type, "memory")
		}
		if got.BaseDir != dir {
			t.Errorf("BaseDir = %q, want %q", got.BaseDir, dir)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		_, err := ReadFromFile("/nonexistent/path/flipbutton.toml")
		if err == nil {
			t.Fatal("ReadFromFile() expected error for missing file")
		}
	})
}
