package encryption

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sync"

	"flipbutton/internal/button"
)

const testMask = 0x5a

// testHeader marks payloads written by TestEncryptor.
var testHeader = []byte("FBENC\x00\x01\x00")

// TestEncryptor is a deterministic, reversible encoder for tests and for
// trying out encrypted storage without key files. Output is a fixed header
// followed by the input XORed with a constant, so it never equals the
// plaintext and involves no cryptography.
type TestEncryptor struct {
	mu         sync.Mutex
	passphrase string
	encrypted  int
}

var _ button.Encryptor = (*TestEncryptor)(nil)

// NewTestEncryptor creates a TestEncryptor that unlocks with any passphrase
// until Setup is called.
func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup records passphrase; later Unlock calls must match it.
func (e *TestEncryptor) Setup(passphrase string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.passphrase = passphrase
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testHeader); err != nil {
		return fmt.Errorf("writing test header: %w", err)
	}
	if err := mask(r, w); err != nil {
		return err
	}

	e.mu.Lock()
	e.encrypted++
	e.mu.Unlock()
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (button.DecryptionContext, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return &TestDecryptionContext{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

// Encrypted returns how many payloads have been encrypted.
func (e *TestEncryptor) Encrypted() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encrypted
}

// TestDecryptionContext reverses TestEncryptor.
type TestDecryptionContext struct{}

var _ button.DecryptionContext = (*TestDecryptionContext)(nil)

func (c *TestDecryptionContext) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(testHeader))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading test header: %w", err)
	}
	if !bytes.Equal(header, testHeader) {
		return fmt.Errorf("invalid test encryption header")
	}
	return mask(r, w)
}

func mask(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading data: %w", err)
		}
		if err := bw.WriteByte(b ^ testMask); err != nil {
			return fmt.Errorf("writing data: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing data: %w", err)
	}
	return nil
}
