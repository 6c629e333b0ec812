package vault

import (
	"context"
	"strings"
	"testing"

	"flipbutton/internal/config"
)

func TestNewS3Vault(t *testing.T) {
	cfg := config.VaultConfig{
		Type:              "s3",
		Name:              "remote",
		S3Bucket:          "buttons",
		S3Prefix:          "faces",
		S3Region:          "us-east-1",
		S3Endpoint:        "http://127.0.0.1:9000",
		S3AccessKeyID:     "AKIDEXAMPLE",
		S3SecretAccessKey: "secret",
	}

	v, err := NewS3Vault(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewS3Vault() error = %v", err)
	}
	if v.Name() != "remote" {
		t.Errorf("Name() = %q, want %q", v.Name(), "remote")
	}
	if got := v.key("abc123"); got != "faces/content/abc123" {
		t.Errorf("key() = %q, want %q", got, "faces/content/abc123")
	}
}

func TestS3Vault_RejectsInvalidChecksum(t *testing.T) {
	v, err := NewS3Vault(context.Background(), config.VaultConfig{
		S3Bucket:          "buttons",
		S3Region:          "us-east-1",
		S3AccessKeyID:     "AKIDEXAMPLE",
		S3SecretAccessKey: "secret",
	})
	if err != nil {
		t.Fatalf("NewS3Vault() error = %v", err)
	}

	// Rejected before any request is made.
	err = v.PutContent(context.Background(), "../escape", strings.NewReader("x"), 1)
	if err == nil {
		t.Error("PutContent() expected error for invalid checksum")
	}
}
