// Package keys produces AES keys: random generation, hex parsing, passphrase
// derivation, BIP-39 mnemonic encoding and Shamir backup shares.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/Davincible/gfaes/pkg/crypto/aes"
	"github.com/Davincible/gfaes/pkg/secure"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultIterations is the PBKDF2 iteration count used for passphrases.
const DefaultIterations = 100000

// The ciphertext layout has no room for a salt, so a fixed domain salt is
// used. Distinct passphrases still yield distinct keys.
var passphraseSalt = []byte("gfaes-passphrase-v1")

// ValidSize reports whether n is an AES key length.
func ValidSize(n int) bool {
	_, err := aes.Rounds(n)
	return err == nil
}

func checkSize(n int) error {
	if !ValidSize(n) {
		return fmt.Errorf("%w: %d bytes, must be 16, 24 or 32", aes.ErrInvalidKeySize, n)
	}
	return nil
}

// Generate returns a random key of size bytes.
func Generate(size int) ([]byte, error) {
	if err := checkSize(size); err != nil {
		return nil, err
	}
	return secure.SecureRandom(size)
}

// ParseHex decodes a hex key, tolerating surrounding whitespace and a 0x or
// 0X prefix.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex key: %w", err)
	}
	if err := checkSize(len(key)); err != nil {
		secure.Zero(key)
		return nil, err
	}
	return key, nil
}

// FromPassphrase derives a key of size bytes with PBKDF2-SHA256.
func FromPassphrase(passphrase []byte, size, iterations int) ([]byte, error) {
	if len(passphrase) == 0 {
		return nil, fmt.Errorf("passphrase cannot be empty")
	}
	if err := checkSize(size); err != nil {
		return nil, err
	}
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key(passphrase, passphraseSalt, iterations, size, sha256.New), nil
}
