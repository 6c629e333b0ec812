package testutil

import (
	"context"
	"testing"

	"flipbutton/internal/button"
	"flipbutton/internal/database"
)

// NewTestStore creates an unopened in-memory SQLite store backed by v, or by a
// fresh memory vault when v is nil. The store is closed when the test completes.
func NewTestStore(t *testing.T, v button.Vault, opts ...database.Option) *database.SQLiteStore {
	t.Helper()

	if v == nil {
		v = NewTestVault()
	}
	store := database.NewSQLiteStore(":memory:", v, opts...)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// OpenTestStore is NewTestStore followed by Open.
func OpenTestStore(t *testing.T, v button.Vault, opts ...database.Option) (*database.SQLiteStore, *button.StoreHandle) {
	t.Helper()

	store := NewTestStore(t, v, opts...)
	h, err := store.Open(context.Background())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	return store, h
}
