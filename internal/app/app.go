package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"flipbutton/internal/button"
	"flipbutton/internal/config"
	"flipbutton/internal/database"
	"flipbutton/internal/encryption"
	"flipbutton/internal/fs"
	"flipbutton/internal/objecturl"
	"flipbutton/internal/vault"
)

// ErrEncryptionNotInitialized is returned when encryption is enabled in the
// config but no key pair exists yet.
var ErrEncryptionNotInitialized = errors.New("encryption is enabled but not initialized (run 'flipbutton encryption init')")

// PassphraseFunc supplies the passphrase that unlocks stored payloads.
type PassphraseFunc func() (string, error)

// Options tune how NewFlipApp wires the application.
type Options struct {
	// RunID tags every log line. Defaults to the start time.
	RunID string
	// Console receives log output next to the log file. Nil while the
	// terminal widget owns the screen.
	Console io.Writer
	// Passphrase unlocks encrypted payloads. When nil the store stays
	// locked: inserts work, listing encrypted assets fails.
	Passphrase PassphraseFunc
}

// FlipApp is the application layer between the CLI and the button core.
// It constructs all dependencies from config, exposes operations that accept
// raw paths, and releases resources on Close.
//
// The store opens once per process: either the widget (through its
// Coordinator) or the asset commands use it, never both.
type FlipApp struct {
	cfg       *config.Config
	vault     button.Vault
	encryptor button.Encryptor
	store     *database.SQLiteStore
	refs      *objecturl.Registry
	logger    *slog.Logger
	logFile   *os.File

	handle *button.StoreHandle
}

// NewFlipApp creates a fully wired FlipApp from the given config.
// The caller must call Close when done.
func NewFlipApp(ctx context.Context, cfg *config.Config, opts Options) (*FlipApp, error) {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	v, err := vault.NewVaultFromConfig(ctx, cfg.Vault)
	if err != nil {
		return nil, fmt.Errorf("creating vault: %w", err)
	}
	if err := v.ValidateSetup(ctx); err != nil {
		return nil, fmt.Errorf("validating vault %s: %w", v.Name(), err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}
	var dec button.DecryptionContext
	if enc != nil {
		if !enc.IsConfigured() {
			return nil, ErrEncryptionNotInitialized
		}
		if opts.Passphrase != nil {
			passphrase, err := opts.Passphrase()
			if err != nil {
				return nil, fmt.Errorf("reading passphrase: %w", err)
			}
			dec, err = enc.Unlock(passphrase)
			if err != nil {
				return nil, fmt.Errorf("unlocking encryption: %w", err)
			}
		}
	}

	var storeOpts []database.Option
	if enc != nil {
		storeOpts = append(storeOpts, database.WithEncryption(enc, dec))
	}
	store, err := database.NewStoreFromConfig(cfg.Database, v, storeOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	runID := opts.RunID
	if runID == "" {
		runID = time.Now().UTC().Format("20060102T150405Z")
	}
	logger, logFile, err := newLogger(cfg.LogDir, runID, level, opts.Console)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger.Info("app ready", "vault", v.Name(), "vault_type", cfg.Vault.Type,
		"database", store.Path(), "encrypted", enc != nil)

	return &FlipApp{
		cfg:       cfg,
		vault:     v,
		encryptor: enc,
		store:     store,
		refs:      objecturl.NewRegistry(cfg.Uploads.MaxTransientSize),
		logger:    logger,
		logFile:   logFile,
	}, nil
}

// NewCoordinator builds the widget core on top of the app's store and
// reference registry. The coordinator opens the store itself on Started.
func (a *FlipApp) NewCoordinator(picker button.Picker, renderer button.Renderer) *button.Coordinator {
	return button.NewCoordinator(a.store, picker, a.refs, renderer, &slogAdapter{l: a.logger})
}

// Config returns the config the app was built from.
func (a *FlipApp) Config() *config.Config {
	return a.cfg
}

// References returns the registry transient references resolve against.
func (a *FlipApp) References() *objecturl.Registry {
	return a.refs
}

// Logger returns the app logger.
func (a *FlipApp) Logger() *slog.Logger {
	return a.logger
}

// open opens the store for the asset commands.
func (a *FlipApp) open(ctx context.Context) (*button.StoreHandle, error) {
	if a.handle != nil {
		return a.handle, nil
	}
	h, err := a.store.Open(ctx)
	if err != nil {
		return nil, err
	}
	a.logger.Info("store opened", "name", h.Name(), "version", h.Version())
	a.handle = h
	return h, nil
}

// AddImage reads the image at rawPath and stores it. A file already stored
// (same name, last-modified time, size and type) returns button.ErrDuplicate.
func (a *FlipApp) AddImage(ctx context.Context, rawPath string) (*button.Asset, error) {
	h, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	f, err := fs.ReadImage(rawPath)
	if err != nil {
		return nil, err
	}
	return a.insert(ctx, h, f)
}

func (a *FlipApp) insert(ctx context.Context, h *button.StoreHandle, f *button.File) (*button.Asset, error) {
	stored, err := a.store.Insert(ctx, h, button.NewAsset(f))
	if err != nil {
		if errors.Is(err, button.ErrDuplicate) {
			a.logger.Info("duplicate asset skipped", "name", f.Name, "size", f.Size)
		} else {
			a.logger.Error("storing asset failed", "name", f.Name, "error", err)
		}
		return nil, err
	}
	a.logger.Info("asset stored", "id", stored.ID, "name", stored.Name, "content_id", stored.ContentID)
	return stored, nil
}

// ImportResult counts what Import did with each file it found.
type ImportResult struct {
	Inserted   int
	Duplicates int
	Skipped    int // not an image
}

// Import stores every image found in dir. Files matching the configured
// ignore patterns or dir's .flipignore are never read. Non-images are skipped
// and duplicates are counted; any other failure stops the import.
func (a *FlipApp) Import(ctx context.Context, dir string, recursive bool) (ImportResult, error) {
	var res ImportResult

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return res, fmt.Errorf("resolving path: %w", err)
	}
	extra, err := fs.ParseIgnoreFile(filepath.Join(absDir, fs.IgnoreFile))
	if err != nil {
		return res, err
	}
	patterns := append(append([]string{}, a.cfg.Uploads.Ignore...), extra...)

	paths, err := fs.FindFiles(absDir, recursive, fs.NewIgnoreMatcher(patterns))
	if err != nil {
		return res, err
	}

	h, err := a.open(ctx)
	if err != nil {
		return res, err
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		f, err := fs.ReadImage(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotImage) {
				a.logger.Debug("skipping non-image", "path", p)
				res.Skipped++
				continue
			}
			return res, err
		}
		if _, err := a.insert(ctx, h, f); err != nil {
			if errors.Is(err, button.ErrDuplicate) {
				res.Duplicates++
				continue
			}
			return res, fmt.Errorf("importing %s: %w", p, err)
		}
		res.Inserted++
	}

	a.logger.Info("import finished", "dir", absDir,
		"inserted", res.Inserted, "duplicates", res.Duplicates, "skipped", res.Skipped)
	return res, nil
}

// ListAssets returns every stored asset with its payload, ordered by ID.
func (a *FlipApp) ListAssets(ctx context.Context) ([]*button.Asset, error) {
	h, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return a.store.ListAll(ctx, h)
}

// Close closes the store and the log file.
func (a *FlipApp) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing log file: %w", err)
		}
	}
	return firstErr
}

// InitEncryption generates the key pair configured in cfg, protecting the
// private key with passphrase.
func InitEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return fmt.Errorf("encryption type is %q: set [encryption] type = \"age\" first", cfg.Encryption.Type)
	}
	if err := enc.Setup(passphrase); err != nil {
		return fmt.Errorf("setting up encryption: %w", err)
	}
	return nil
}
