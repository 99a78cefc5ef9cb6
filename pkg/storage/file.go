// Package storage encrypts and decrypts whole files with a CBC cipher.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Davincible/gfaes/pkg/crypto/cbc"
	"github.com/Davincible/gfaes/pkg/secure"
)

// Output naming defaults and the permission bits for written files.
const (
	DefaultEncryptedSuffix = ".enc"
	DefaultDecryptedSuffix = ".dec"
	FilePerm               = 0600
)

// FileCipher reads a file, runs it through a CBC cipher and writes the
// result next to it (or to an explicit path).
type FileCipher struct {
	cipher          *cbc.Cipher
	encryptedSuffix string
	decryptedSuffix string
}

// Option configures a FileCipher.
type Option func(*FileCipher)

// WithSuffixes overrides the suffixes used to name output files. Empty
// values keep the defaults.
func WithSuffixes(encrypted, decrypted string) Option {
	return func(f *FileCipher) {
		if encrypted != "" {
			f.encryptedSuffix = encrypted
		}
		if decrypted != "" {
			f.decryptedSuffix = decrypted
		}
	}
}

// NewFileCipher wraps c. The default suffixes apply unless overridden by
// WithSuffixes.
func NewFileCipher(c *cbc.Cipher, opts ...Option) *FileCipher {
	f := &FileCipher{
		cipher:          c,
		encryptedSuffix: DefaultEncryptedSuffix,
		decryptedSuffix: DefaultDecryptedSuffix,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// EncryptedPath is the default output name for encrypting path.
func (f *FileCipher) EncryptedPath(path string) string {
	return path + f.encryptedSuffix
}

// DecryptedPath is the default output name for decrypting path. A trailing
// encrypted suffix is swapped for the decrypted one, anything else gets the
// decrypted suffix appended.
func (f *FileCipher) DecryptedPath(path string) string {
	if base, ok := strings.CutSuffix(path, f.encryptedSuffix); ok && base != "" {
		return base + f.decryptedSuffix
	}
	return path + f.decryptedSuffix
}

// EncryptFile encrypts src into dst and returns dst. An empty dst selects
// EncryptedPath(src).
func (f *FileCipher) EncryptFile(src, dst string) (string, error) {
	if dst == "" {
		dst = f.EncryptedPath(src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	defer secure.Zero(data)

	out, err := f.cipher.Encrypt(data)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt %s: %w", src, err)
	}

	if err := writeFile(dst, out); err != nil {
		return "", err
	}
	return dst, nil
}

// DecryptFile decrypts src into dst and returns dst. An empty dst selects
// DecryptedPath(src). Nothing is written when decryption fails.
func (f *FileCipher) DecryptFile(src, dst string) (string, error) {
	if dst == "" {
		dst = f.DecryptedPath(src)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	out, err := f.cipher.Decrypt(data)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt %s: %w", src, err)
	}
	defer secure.Zero(out)

	if err := writeFile(dst, out); err != nil {
		return "", err
	}
	return dst, nil
}

func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Exists reports whether path exists.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SameFile reports whether a and b name the same file. Paths that do not
// exist yet are compared by their absolute form.
func SameFile(a, b string) bool {
	ai, errA := os.Stat(a)
	bi, errB := os.Stat(b)
	if errA == nil && errB == nil {
		return os.SameFile(ai, bi)
	}

	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// Shred overwrites a file with random bytes and removes it. Missing files
// are not an error.
func Shred(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("refusing to shred directory %s", path)
	}

	noise, err := secure.SecureRandom(int(info.Size()))
	if err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}

	if err := os.WriteFile(path, noise, FilePerm); err != nil {
		return fmt.Errorf("failed to overwrite file: %w", err)
	}

	return os.Remove(path)
}
