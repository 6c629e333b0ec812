package objecturl

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"flipbutton/internal/button"
)

// DefaultMaxSize is the default cap on bytes held by a Registry (64MB).
const DefaultMaxSize int64 = 64 * 1024 * 1024

// Scheme prefixes every reference handed out by a Registry.
const Scheme = "blob:flipbutton/"

// ErrFull is returned when a new entry would push the registry past its cap.
var ErrFull = errors.New("object url registry full")

// namespace scopes reference UUIDs to this application.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://flipbutton.invalid/object-url"))

// Entry is the data behind a reference.
type Entry struct {
	Ref  string
	Name string
	Type string
	Size int64
	Data []byte
}

// Registry maps session-scoped references to image bytes, the way a browser
// maps object URLs to blobs. References are derived from the file's dedup key,
// so the same file always maps to the same reference.
// This implementation is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	size    int64
	maxSize int64
}

// NewRegistry creates an empty registry. maxSize <= 0 selects DefaultMaxSize.
func NewRegistry(maxSize int64) *Registry {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Registry{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
	}
}

// Ref returns the reference a file maps to, whether or not it is registered.
func Ref(f *button.File) string {
	return Scheme + uuid.NewSHA1(namespace, []byte(f.DedupKey())).String()
}

// Create registers f and returns its reference. Registering the same file
// again returns the existing reference without using more space.
func (r *Registry) Create(f *button.File) (string, error) {
	if f == nil {
		return "", fmt.Errorf("creating object url: nil file")
	}
	ref := Ref(f)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[ref]; ok {
		return ref, nil
	}

	size := int64(len(f.Data))
	if r.size+size > r.maxSize {
		return "", fmt.Errorf("%w: %d bytes held, %d more would exceed %d", ErrFull, r.size, size, r.maxSize)
	}

	r.entries[ref] = &Entry{
		Ref:  ref,
		Name: f.Name,
		Type: f.Type,
		Size: size,
		Data: f.Data,
	}
	r.size += size
	return ref, nil
}

// Lookup returns the entry behind ref.
func (r *Registry) Lookup(ref string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[ref]
	return e, ok
}

// Len returns the number of registered references.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Size returns the number of bytes held.
func (r *Registry) Size() int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size
}

var _ button.References = (*Registry)(nil)
