// Package vault stores asset payloads addressed by checksum: in memory, on
// the local filesystem or in an S3 bucket.
package vault

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by GetContent for an unknown checksum.
var ErrNotFound = errors.New("content not found")

// validateChecksum rejects keys that could escape the vault layout.
func validateChecksum(checksum string) error {
	if checksum == "" {
		return fmt.Errorf("empty checksum")
	}
	if strings.ContainsAny(checksum, `/\.`) {
		return fmt.Errorf("invalid checksum %q", checksum)
	}
	return nil
}
