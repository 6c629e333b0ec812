package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"flipbutton/internal/button"
)

// MemoryVault keeps payloads in a map. It is safe for concurrent use and
// lost when the process exits.
type MemoryVault struct {
	name    string
	mu      sync.RWMutex
	content map[string][]byte // checksum -> payload
}

// NewMemoryVault creates a new in-memory vault with the given name.
func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:    name,
		content: make(map[string][]byte),
	}
}

// Name returns the vault name.
func (m *MemoryVault) Name() string {
	return m.name
}

// PutContent stores content identified by its checksum.
func (m *MemoryVault) PutContent(ctx context.Context, checksum string, r io.Reader, size int64) error {
	if err := validateChecksum(checksum); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read content: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.content[checksum]; !ok {
		m.content[checksum] = data
	}
	return nil
}

// GetContent writes the payload stored under checksum to w.
func (m *MemoryVault) GetContent(ctx context.Context, checksum string, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	data, ok := m.content[checksum]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, checksum)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write content: %w", err)
	}
	return nil
}

// Len returns the number of stored payloads.
func (m *MemoryVault) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.content)
}

// ValidateSetup always succeeds for the in-memory vault.
func (m *MemoryVault) ValidateSetup(context.Context) error {
	return nil
}

// Compile-time check that MemoryVault implements button.Vault.
var _ button.Vault = (*MemoryVault)(nil)
