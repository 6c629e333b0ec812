package testutil

import (
	"context"
	"fmt"
	"sync"

	"flipbutton/internal/button"
)

// FakeStore is an in-memory button.Store with injectable failures. It
// enforces the same dedup key as the SQLite store.
type FakeStore struct {
	mu sync.Mutex

	// OpenErr, InsertErr and ListErr make the matching call fail.
	OpenErr   error
	InsertErr error
	ListErr   error

	opened  bool
	nextID  int64
	assets  []*button.Asset
	keys    map[string]bool
	inserts int
}

// NewFakeStore creates an empty store preloaded with seed.
func NewFakeStore(seed ...*button.File) *FakeStore {
	s := &FakeStore{keys: make(map[string]bool)}
	for _, f := range seed {
		s.add(button.NewAsset(f))
	}
	return s
}

func (s *FakeStore) Open(ctx context.Context) (*button.StoreHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.OpenErr != nil {
		return nil, fmt.Errorf("%w: %w", button.ErrOpen, s.OpenErr)
	}
	if s.opened {
		return nil, fmt.Errorf("%w: already opened", button.ErrOpen)
	}
	s.opened = true
	return button.NewStoreHandle(s, "fake", 1), nil
}

func (s *FakeStore) Insert(ctx context.Context, h *button.StoreHandle, asset *button.Asset) (*button.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inserts++
	if !h.OwnedBy(s) {
		return nil, fmt.Errorf("%w: foreign handle", button.ErrStore)
	}
	if s.InsertErr != nil {
		return nil, fmt.Errorf("%w: %w", button.ErrStore, s.InsertErr)
	}
	if s.keys[asset.DedupKey()] {
		return nil, button.ErrDuplicate
	}
	return s.add(asset), nil
}

func (s *FakeStore) ListAll(ctx context.Context, h *button.StoreHandle) ([]*button.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !h.OwnedBy(s) {
		return nil, fmt.Errorf("%w: foreign handle", button.ErrStore)
	}
	if s.ListErr != nil {
		return nil, fmt.Errorf("%w: %w", button.ErrStore, s.ListErr)
	}
	out := make([]*button.Asset, len(s.assets))
	for i, a := range s.assets {
		c := *a
		out[i] = &c
	}
	return out, nil
}

func (s *FakeStore) Close() error { return nil }

// Assets returns the number of stored assets.
func (s *FakeStore) Assets() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// Inserts returns how many times Insert was called.
func (s *FakeStore) Inserts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts
}

func (s *FakeStore) add(a *button.Asset) *button.Asset {
	s.nextID++
	c := *a
	c.ID = s.nextID
	c.ContentID = SHA256Hex(a.Data)
	s.assets = append(s.assets, &c)
	s.keys[a.DedupKey()] = true
	return &c
}

var _ button.Store = (*FakeStore)(nil)
