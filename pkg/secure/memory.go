// Package secure holds helpers for key material: zeroing, constant-time
// comparison and random generation.
package secure

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"io"
	"runtime"
	"sync"
)

// KeyBytes wraps key material so it can be wiped once the caller is done
// with it.
type KeyBytes struct {
	data []byte
	mu   sync.RWMutex
}

// FromBytes copies data into a new KeyBytes.
func FromBytes(data []byte) *KeyBytes {
	kb := &KeyBytes{
		data: make([]byte, len(data)),
	}
	copy(kb.data, data)
	return kb
}

// Bytes returns a copy of the key material.
func (kb *KeyBytes) Bytes() []byte {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	result := make([]byte, len(kb.data))
	copy(result, kb.data)
	return result
}

// Len returns the key length in bytes.
func (kb *KeyBytes) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.data)
}

// Destroy zeroes the key material and drops the buffer.
func (kb *KeyBytes) Destroy() {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	Zero(kb.data)
	kb.data = nil
}

// Zero overwrites b with zeros.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}

// ConstantTimeCompare reports whether x and y are equal without an early exit
// on the first differing byte.
func ConstantTimeCompare(x, y []byte) bool {
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

// SecureRandom returns size bytes from crypto/rand.
func SecureRandom(size int) ([]byte, error) {
	return ReadRandom(rand.Reader, size)
}

// ReadRandom reads exactly size bytes from r.
func ReadRandom(r io.Reader, size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(r, b); err != nil {
		Zero(b)
		return nil, fmt.Errorf("failed to generate secure random bytes: %w", err)
	}
	return b, nil
}
