package button

import (
	"context"
	"io"
)

// Vault stores asset payloads addressed by their SHA-256 checksum.
// Payloads are streamed so large images are never buffered twice.
type Vault interface {
	// Name identifies the vault in logs and errors.
	Name() string

	// PutContent stores content identified by its checksum.
	// Storing the same checksum twice is a no-op.
	// size is the number of bytes that will be read from r.
	PutContent(ctx context.Context, checksum string, r io.Reader, size int64) error

	// GetContent retrieves content by checksum and writes it to w.
	GetContent(ctx context.Context, checksum string, w io.Writer) error

	// ValidateSetup verifies that the vault is reachable and writable.
	ValidateSetup(ctx context.Context) error
}
