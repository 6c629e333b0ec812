package testutil

import (
	"flipbutton/internal/encryption"
)

// NewTestEncryptor creates the reversible test encryptor.
func NewTestEncryptor() *encryption.TestEncryptor {
	return encryption.NewTestEncryptor()
}
