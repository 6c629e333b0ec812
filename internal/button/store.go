package button

import "context"

// StoreHandle is proof that an asset store has been opened and its schema
// initialized. It is created once and never modified, so any number of
// goroutines may hold and read it.
type StoreHandle struct {
	owner   any
	name    string
	version uint
}

// NewStoreHandle is called by Store implementations from a successful Open.
func NewStoreHandle(owner any, name string, version uint) *StoreHandle {
	return &StoreHandle{owner: owner, name: name, version: version}
}

// Name describes the backing store, e.g. the database path.
func (h *StoreHandle) Name() string { return h.name }

// Version is the schema version the store was opened with.
func (h *StoreHandle) Version() uint { return h.version }

// OwnedBy reports whether the handle was issued by owner.
func (h *StoreHandle) OwnedBy(owner any) bool {
	return h != nil && h.owner == owner
}

// Store is the durable, deduplicating asset store.
type Store interface {
	// Open creates the schema if needed and returns the handle.
	// It may be called once per process; failures wrap ErrOpen.
	Open(ctx context.Context) (*StoreHandle, error)

	// Insert writes a new asset inside a read-write transaction and returns it
	// with its assigned ID. A dedup key collision returns ErrDuplicate; other
	// failures wrap ErrStore.
	Insert(ctx context.Context, h *StoreHandle, asset *Asset) (*Asset, error)

	// ListAll returns every stored asset with its payload, ordered by ID.
	// Failures wrap ErrStore.
	ListAll(ctx context.Context, h *StoreHandle) ([]*Asset, error)

	// Close releases the backend.
	Close() error
}
