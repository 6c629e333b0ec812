package database

import (
	"bytes"
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"flipbutton/internal/button"
	"flipbutton/internal/database/migrations"
)

const (
	insertAsset = `INSERT INTO buttons (name, type, size, last_modified, content_id, encrypted, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectAssets = `SELECT id, name, type, size, last_modified, content_id, encrypted, created_at
FROM buttons ORDER BY id`
)

// SQLiteStore implements button.Store. Rows live in SQLite; payloads live in
// a vault under the SHA-256 of the stored bytes.
type SQLiteStore struct {
	path      string
	vault     button.Vault
	encryptor button.Encryptor
	decryptor button.DecryptionContext
	clock     button.Clock

	mu     sync.Mutex
	db     *sql.DB
	opened bool
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithEncryption encrypts payloads with enc before they reach the vault.
// dec may be nil, in which case encrypted payloads cannot be listed.
func WithEncryption(enc button.Encryptor, dec button.DecryptionContext) Option {
	return func(s *SQLiteStore) {
		s.encryptor = enc
		s.decryptor = dec
	}
}

// WithClock sets the clock used for created_at.
func WithClock(c button.Clock) Option {
	return func(s *SQLiteStore) {
		s.clock = c
	}
}

// NewSQLiteStore creates a store for the database at path (or ":memory:").
// Nothing is opened until Open is called.
func NewSQLiteStore(path string, vault button.Vault, opts ...Option) *SQLiteStore {
	s := &SQLiteStore{
		path:  path,
		vault: vault,
		clock: button.RealClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenConnection opens and configures a SQLite database connection.
// path can be a file path or ":memory:".
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: a :memory: database exists per connection, and it
	// serializes writers so concurrent inserts never see SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run %q: %w", pragma, err)
		}
	}
	return db, nil
}

// Open connects to the database, applies the schema and returns the handle.
// It succeeds at most once per store.
func (s *SQLiteStore) Open(ctx context.Context) (*button.StoreHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.opened {
		return nil, fmt.Errorf("%w: %s already opened", button.ErrOpen, s.path)
	}
	if s.vault == nil {
		return nil, fmt.Errorf("%w: no vault configured", button.ErrOpen)
	}

	db, err := OpenConnection(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", button.ErrOpen, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", button.ErrOpen, err)
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", button.ErrOpen, err)
	}
	if err := migrations.CheckDBMigrationStatus(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", button.ErrOpen, err)
	}
	version, err := migrations.Version(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %w", button.ErrOpen, err)
	}

	s.db = db
	s.opened = true
	return button.NewStoreHandle(s, s.path, version), nil
}

// Insert records asset and uploads its payload in one transaction. The row
// is inserted first so a duplicate never touches the vault; the transaction
// commits only after the payload is stored.
func (s *SQLiteStore) Insert(ctx context.Context, h *button.StoreHandle, asset *button.Asset) (*button.Asset, error) {
	if err := s.check(h); err != nil {
		return nil, err
	}

	payload, encrypted, err := s.seal(asset.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", button.ErrStore, err)
	}
	sum := sha256.Sum256(payload)
	contentID := hex.EncodeToString(sum[:])
	createdAt := s.clock.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: starting transaction: %w", button.ErrStore, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, insertAsset,
		asset.Name,
		asset.Type,
		asset.Size,
		asset.LastModified.UnixMilli(),
		contentID,
		encrypted,
		createdAt.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, button.ErrDuplicate
		}
		return nil, fmt.Errorf("%w: inserting asset: %w", button.ErrStore, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%w: reading asset id: %w", button.ErrStore, err)
	}

	if err := s.vault.PutContent(ctx, contentID, bytes.NewReader(payload), int64(len(payload))); err != nil {
		return nil, fmt.Errorf("%w: uploading to vault: %w", button.ErrStore, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: committing transaction: %w", button.ErrStore, err)
	}

	stored := *asset
	stored.ID = id
	stored.ContentID = contentID
	stored.Encrypted = encrypted
	stored.CreatedAt = time.UnixMilli(createdAt.UnixMilli())
	return &stored, nil
}

// ListAll returns every asset with its payload, ordered by ID.
func (s *SQLiteStore) ListAll(ctx context.Context, h *button.StoreHandle) ([]*button.Asset, error) {
	if err := s.check(h); err != nil {
		return nil, err
	}

	assets, err := s.listRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", button.ErrStore, err)
	}

	for _, a := range assets {
		var buf bytes.Buffer
		if err := s.vault.GetContent(ctx, a.ContentID, &buf); err != nil {
			return nil, fmt.Errorf("%w: loading payload of asset %d: %w", button.ErrStore, a.ID, err)
		}
		data, err := s.open(a, buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", button.ErrStore, err)
		}
		a.Data = data
	}
	return assets, nil
}

func (s *SQLiteStore) listRows(ctx context.Context) ([]*button.Asset, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, selectAssets)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []*button.Asset
	for rows.Next() {
		var (
			a                       button.Asset
			lastModified, createdAt int64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Type, &a.Size, &lastModified, &a.ContentID, &a.Encrypted, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.LastModified = time.UnixMilli(lastModified)
		a.CreatedAt = time.UnixMilli(createdAt)
		assets = append(assets, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	return assets, nil
}

// seal returns the bytes to store and whether they are encrypted.
func (s *SQLiteStore) seal(data []byte) ([]byte, bool, error) {
	if s.encryptor == nil {
		return data, false, nil
	}
	var buf bytes.Buffer
	if err := s.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
		return nil, false, fmt.Errorf("encrypting payload: %w", err)
	}
	return buf.Bytes(), true, nil
}

func (s *SQLiteStore) open(a *button.Asset, stored []byte) ([]byte, error) {
	if !a.Encrypted {
		return stored, nil
	}
	if s.decryptor == nil {
		return nil, fmt.Errorf("asset %d is encrypted and the store is locked", a.ID)
	}
	var buf bytes.Buffer
	if err := s.decryptor.Decrypt(bytes.NewReader(stored), &buf); err != nil {
		return nil, fmt.Errorf("decrypting asset %d: %w", a.ID, err)
	}
	return buf.Bytes(), nil
}

func (s *SQLiteStore) check(h *button.StoreHandle) error {
	if !h.OwnedBy(s) {
		return fmt.Errorf("%w: handle was not issued by this store", button.ErrStore)
	}
	return nil
}

// Path returns the database path (or ":memory:").
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database connection, if it was opened.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

// Compile-time check that SQLiteStore implements button.Store.
var _ button.Store = (*SQLiteStore)(nil)
