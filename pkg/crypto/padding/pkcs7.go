// Package padding implements PKCS#7 block padding.
package padding

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Davincible/gfaes/pkg/secure"
)

// ErrInvalidPadding means the trailing bytes are not valid PKCS#7 padding,
// which in practice signals a wrong key or tampered ciphertext.
var ErrInvalidPadding = errors.New("invalid PKCS#7 padding")

// Pad appends between 1 and blockSize bytes, each equal to the number of
// bytes added. Aligned input gets a full extra block.
func Pad(data []byte, blockSize int) []byte {
	if blockSize < 1 || blockSize > 255 {
		panic(fmt.Sprintf("padding: invalid block size %d", blockSize))
	}
	n := blockSize - len(data)%blockSize

	out := make([]byte, len(data)+n)
	copy(out, data)
	copy(out[len(data):], bytes.Repeat([]byte{byte(n)}, n))
	return out
}

// Unpad validates and strips PKCS#7 padding. Every padding byte is checked,
// not only the last one.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrInvalidPadding, len(data), blockSize)
	}

	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: pad length %d", ErrInvalidPadding, n)
	}

	tail := data[len(data)-n:]
	if !secure.ConstantTimeCompare(tail, bytes.Repeat([]byte{byte(n)}, n)) {
		return nil, fmt.Errorf("%w: inconsistent padding bytes", ErrInvalidPadding)
	}

	return data[:len(data)-n], nil
}
