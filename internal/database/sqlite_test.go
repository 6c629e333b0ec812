package database_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"flipbutton/internal/button"
	"flipbutton/internal/database"
	"flipbutton/internal/testutil"
	"flipbutton/internal/vault"
)

// failingVault refuses every write.
type failingVault struct{ *vault.MemoryVault }

func (failingVault) PutContent(context.Context, string, io.Reader, int64) error {
	return errors.New("disk full")
}

func newFile(name string, data string) *button.File {
	return &button.File{
		Name:         name,
		Type:         "image/png",
		Size:         int64(len(data)),
		LastModified: time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC),
		Data:         []byte(data),
	}
}

func TestSQLiteStore_Open(t *testing.T) {
	t.Run("returns a handle at schema version 1", func(t *testing.T) {
		s, h := testutil.OpenTestStore(t, testutil.NewTestVault())

		if !h.OwnedBy(s) {
			t.Error("handle not owned by store")
		}
		if h.Version() != 1 {
			t.Errorf("Version() = %d, want 1", h.Version())
		}
		if h.Name() != ":memory:" {
			t.Errorf("Name() = %q, want %q", h.Name(), ":memory:")
		}
	})

	t.Run("second open fails", func(t *testing.T) {
		s, _ := testutil.OpenTestStore(t, testutil.NewTestVault())

		_, err := s.Open(context.Background())
		if !errors.Is(err, button.ErrOpen) {
			t.Errorf("second Open() error = %v, want ErrOpen", err)
		}
	})

	t.Run("unreachable database", func(t *testing.T) {
		s := database.NewSQLiteStore("/nonexistent/dir/buttons.db", testutil.NewTestVault())
		defer s.Close()

		_, err := s.Open(context.Background())
		if !errors.Is(err, button.ErrOpen) {
			t.Errorf("Open() error = %v, want ErrOpen", err)
		}
	})

	t.Run("no vault", func(t *testing.T) {
		s := database.NewSQLiteStore(":memory:", nil)
		defer s.Close()

		_, err := s.Open(context.Background())
		if !errors.Is(err, button.ErrOpen) {
			t.Errorf("Open() error = %v, want ErrOpen", err)
		}
	})
}

func TestSQLiteStore_InsertAndList(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	clock := testutil.NewStubClock(created)
	s, h := testutil.OpenTestStore(t, nil, database.WithClock(clock))

	var ids []int64
	for i, f := range []*button.File{newFile("a.png", "aaa"), newFile("b.png", "bbbb"), newFile("c.png", "cc")} {
		stored, err := s.Insert(ctx, h, button.NewAsset(f))
		if err != nil {
			t.Fatalf("Insert(%s) error = %v", f.Name, err)
		}
		if want := testutil.SHA256Hex(f.Data); stored.ContentID != want {
			t.Errorf("Insert(%s) ContentID = %s, want %s", f.Name, stored.ContentID, want)
		}
		wantCreated := created.Add(time.Duration(i) * time.Minute)
		if !stored.CreatedAt.Equal(wantCreated) {
			t.Errorf("CreatedAt = %v, want %v", stored.CreatedAt, wantCreated)
		}
		ids = append(ids, stored.ID)
		clock.Advance(time.Minute)
	}
	if !(ids[0] < ids[1] && ids[1] < ids[2]) {
		t.Errorf("ids not increasing: %v", ids)
	}

	assets, err := s.ListAll(ctx, h)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(assets) != 3 {
		t.Fatalf("ListAll() returned %d assets, want 3", len(assets))
	}
	for i, want := range []struct{ name, data string }{{"a.png", "aaa"}, {"b.png", "bbbb"}, {"c.png", "cc"}} {
		a := assets[i]
		if a.ID != ids[i] || a.Name != want.name || string(a.Data) != want.data {
			t.Errorf("asset %d = {%d %s %q}, want {%d %s %q}", i, a.ID, a.Name, a.Data, ids[i], want.name, want.data)
		}
		if a.Encrypted {
			t.Errorf("asset %d Encrypted = true", i)
		}
		if a.ContentID != testutil.SHA256Hex([]byte(want.data)) {
			t.Errorf("asset %d ContentID = %s, want SHA-256 of its data", i, a.ContentID)
		}
		if wantCreated := created.Add(time.Duration(i) * time.Minute); !a.CreatedAt.Equal(wantCreated) {
			t.Errorf("asset %d CreatedAt = %v, want %v", i, a.CreatedAt, wantCreated)
		}
		// Millisecond precision survives the round trip.
		wantMod := time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)
		if !a.LastModified.Equal(wantMod) {
			t.Errorf("asset %d LastModified = %v, want %v", i, a.LastModified, wantMod)
		}
	}
}

func TestSQLiteStore_ListAll_Empty(t *testing.T) {
	s, h := testutil.OpenTestStore(t, testutil.NewTestVault())

	assets, err := s.ListAll(context.Background(), h)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("ListAll() = %d assets, want 0", len(assets))
	}
}

func TestSQLiteStore_Insert_Duplicate(t *testing.T) {
	ctx := context.Background()

	t.Run("same metadata is rejected", func(t *testing.T) {
		v := testutil.NewTestVault()
		s, h := testutil.OpenTestStore(t, v)

		if _, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow"))); err != nil {
			t.Fatalf("first Insert() error = %v", err)
		}
		_, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow")))
		if !errors.Is(err, button.ErrDuplicate) {
			t.Fatalf("second Insert() error = %v, want ErrDuplicate", err)
		}

		assets, err := s.ListAll(ctx, h)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(assets) != 1 {
			t.Errorf("ListAll() = %d assets, want 1", len(assets))
		}
		if v.Len() != 1 {
			t.Errorf("vault holds %d payloads, want 1", v.Len())
		}
	})

	t.Run("different bytes with identical metadata are still duplicates", func(t *testing.T) {
		s, h := testutil.OpenTestStore(t, testutil.NewTestVault())

		if _, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow"))); err != nil {
			t.Fatalf("first Insert() error = %v", err)
		}
		_, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "purr")))
		if !errors.Is(err, button.ErrDuplicate) {
			t.Errorf("second Insert() error = %v, want ErrDuplicate", err)
		}
	})

	t.Run("same bytes under another name share one payload", func(t *testing.T) {
		v := testutil.NewTestVault()
		s, h := testutil.OpenTestStore(t, v)

		a, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow")))
		if err != nil {
			t.Fatalf("Insert(cat) error = %v", err)
		}
		b, err := s.Insert(ctx, h, button.NewAsset(newFile("kitty.png", "meow")))
		if err != nil {
			t.Fatalf("Insert(kitty) error = %v", err)
		}
		if a.ContentID != b.ContentID {
			t.Errorf("ContentIDs differ: %s vs %s", a.ContentID, b.ContentID)
		}
		if v.Len() != 1 {
			t.Errorf("vault holds %d payloads, want 1", v.Len())
		}
	})
}

func TestSQLiteStore_Insert_VaultFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	s, h := testutil.OpenTestStore(t, failingVault{testutil.NewTestVault()})

	_, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow")))
	if !errors.Is(err, button.ErrStore) {
		t.Fatalf("Insert() error = %v, want ErrStore", err)
	}

	assets, err := s.ListAll(ctx, h)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(assets) != 0 {
		t.Errorf("ListAll() = %d assets after failed insert, want 0", len(assets))
	}
}

func TestSQLiteStore_ForeignHandle(t *testing.T) {
	ctx := context.Background()
	s, _ := testutil.OpenTestStore(t, testutil.NewTestVault())
	_, other := testutil.OpenTestStore(t, testutil.NewTestVault())

	if _, err := s.Insert(ctx, other, button.NewAsset(newFile("a.png", "a"))); !errors.Is(err, button.ErrStore) {
		t.Errorf("Insert() with foreign handle error = %v, want ErrStore", err)
	}
	if _, err := s.ListAll(ctx, nil); !errors.Is(err, button.ErrStore) {
		t.Errorf("ListAll() with nil handle error = %v, want ErrStore", err)
	}
}

func TestSQLiteStore_Encryption(t *testing.T) {
	ctx := context.Background()
	enc := testutil.NewTestEncryptor()
	dec, err := enc.Unlock("")
	if err != nil {
		t.Fatalf("Unlock() error = %v", err)
	}

	t.Run("payloads are encrypted at rest", func(t *testing.T) {
		v := testutil.NewTestVault()
		s, h := testutil.OpenTestStore(t, v, database.WithEncryption(enc, dec))

		stored, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow")))
		if err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if !stored.Encrypted {
			t.Error("Encrypted = false, want true")
		}

		var raw bytes.Buffer
		if err := v.GetContent(ctx, stored.ContentID, &raw); err != nil {
			t.Fatalf("GetContent() error = %v", err)
		}
		if bytes.Contains(raw.Bytes(), []byte("meow")) {
			t.Error("vault holds plaintext")
		}
		if stored.ContentID != testutil.SHA256Hex(raw.Bytes()) {
			t.Error("ContentID is not the SHA-256 of the stored ciphertext")
		}

		assets, err := s.ListAll(ctx, h)
		if err != nil {
			t.Fatalf("ListAll() error = %v", err)
		}
		if len(assets) != 1 || string(assets[0].Data) != "meow" {
			t.Errorf("ListAll() = %+v, want one asset with data meow", assets)
		}
	})

	t.Run("locked store cannot list encrypted assets", func(t *testing.T) {
		s, h := testutil.OpenTestStore(t, testutil.NewTestVault(), database.WithEncryption(enc, nil))

		if _, err := s.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow"))); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
		if _, err := s.ListAll(ctx, h); !errors.Is(err, button.ErrStore) {
			t.Errorf("ListAll() error = %v, want ErrStore", err)
		}
	})
}

func TestSQLiteStore_PersistsAcrossRestarts(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, database.DatabaseFile)

	v1, err := vault.NewFileSystemVault("local", filepath.Join(dir, "vault"))
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	clock := testutil.FixedClock()
	first := database.NewSQLiteStore(dbPath, v1, database.WithClock(clock))
	h, err := first.Open(ctx)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := first.Insert(ctx, h, button.NewAsset(newFile("cat.png", "meow"))); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	v2, err := vault.NewFileSystemVault("local", filepath.Join(dir, "vault"))
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	second := database.NewSQLiteStore(dbPath, v2)
	defer second.Close()
	h2, err := second.Open(ctx)
	if err != nil {
		t.Fatalf("reopen Open() error = %v", err)
	}

	assets, err := second.ListAll(ctx, h2)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(assets) != 1 || assets[0].Name != "cat.png" || string(assets[0].Data) != "meow" {
		t.Fatalf("ListAll() after restart = %+v", assets)
	}
	if !assets[0].CreatedAt.Equal(clock.Now()) {
		t.Errorf("CreatedAt after restart = %v, want %v", assets[0].CreatedAt, clock.Now())
	}

	// The dedup index survives too.
	if _, err := second.Insert(ctx, h2, button.NewAsset(newFile("cat.png", "meow"))); !errors.Is(err, button.ErrDuplicate) {
		t.Errorf("Insert() after restart error = %v, want ErrDuplicate", err)
	}
}

func TestSQLiteStore_ConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s, h := testutil.OpenTestStore(t, testutil.NewTestVault())

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n*2)
	for i := 0; i < n; i++ {
		wg.Add(2)
		f := newFile(fmt.Sprintf("img-%02d.png", i), fmt.Sprintf("data-%d", i))
		// Two racers per file: exactly one wins.
		for j := 0; j < 2; j++ {
			go func() {
				defer wg.Done()
				_, err := s.Insert(ctx, h, button.NewAsset(f))
				errs <- err
			}()
		}
	}
	wg.Wait()
	close(errs)

	var ok, dup int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, button.ErrDuplicate):
			dup++
		default:
			t.Errorf("Insert() unexpected error = %v", err)
		}
	}
	if ok != n || dup != n {
		t.Errorf("ok = %d, dup = %d, want %d each", ok, dup, n)
	}

	assets, err := s.ListAll(ctx, h)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(assets) != n {
		t.Errorf("ListAll() = %d assets, want %d", len(assets), n)
	}
}
