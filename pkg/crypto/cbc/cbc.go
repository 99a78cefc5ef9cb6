// Package cbc turns a 16-byte block cipher into a byte-stream cipher using
// cipher block chaining and PKCS#7 padding.
//
// The output layout is IV || C0 || C1 || ... with no header and no
// authentication tag.
package cbc

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/Davincible/gfaes/pkg/crypto/padding"
	"github.com/Davincible/gfaes/pkg/secure"
	"golang.org/x/sync/errgroup"
)

// BlockSize is the only block size the chaining layer supports.
const BlockSize = 16

// ErrMalformedCiphertext is returned for input that cannot be IV plus whole
// ciphertext blocks. Padding failures are reported as padding.ErrInvalidPadding.
var ErrMalformedCiphertext = errors.New("malformed ciphertext")

// Cipher encrypts and decrypts whole messages. It is safe for concurrent use
// when the underlying block cipher and random source are.
type Cipher struct {
	block   cipher.Block
	random  io.Reader
	workers int
}

// Option configures a Cipher.
type Option func(*Cipher)

// WithRandom replaces crypto/rand as the IV source.
func WithRandom(r io.Reader) Option {
	return func(c *Cipher) {
		c.random = r
	}
}

// WithWorkers sets how many goroutines decrypt blocks in parallel. Values
// below 2 decrypt sequentially. Encryption is always sequential.
func WithWorkers(n int) Option {
	return func(c *Cipher) {
		c.workers = n
	}
}

// New wraps block, which must have a 16-byte block size.
func New(block cipher.Block, opts ...Option) (*Cipher, error) {
	if block == nil {
		return nil, fmt.Errorf("block cipher cannot be nil")
	}
	if block.BlockSize() != BlockSize {
		return nil, fmt.Errorf("block size must be %d bytes, got %d", BlockSize, block.BlockSize())
	}

	c := &Cipher{
		block:   block,
		random:  rand.Reader,
		workers: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Encrypt pads plaintext, draws a fresh IV and returns IV || ciphertext.
func (c *Cipher) Encrypt(plaintext []byte) ([]byte, error) {
	iv, err := secure.ReadRandom(c.random, BlockSize)
	if err != nil {
		return nil, fmt.Errorf("failed to generate IV: %w", err)
	}
	return c.EncryptWithIV(plaintext, iv)
}

// EncryptWithIV is Encrypt with a caller-chosen IV. Reusing an IV with the
// same key leaks equality of message prefixes.
func (c *Cipher) EncryptWithIV(plaintext, iv []byte) ([]byte, error) {
	if len(iv) != BlockSize {
		return nil, fmt.Errorf("IV must be %d bytes, got %d", BlockSize, len(iv))
	}

	padded := padding.Pad(plaintext, BlockSize)
	out := make([]byte, BlockSize+len(padded))
	copy(out, iv)

	prev := out[:BlockSize]
	for i := 0; i < len(padded); i += BlockSize {
		dst := out[BlockSize+i : BlockSize+i+BlockSize]
		xorBlock(dst, padded[i:i+BlockSize], prev)
		c.block.Encrypt(dst, dst)
		prev = dst
	}

	secure.Zero(padded)
	return out, nil
}

// Decrypt reverses Encrypt. It returns ErrMalformedCiphertext when the input
// is not IV plus at least one whole block, and padding.ErrInvalidPadding when
// the recovered padding is inconsistent.
func (c *Cipher) Decrypt(data []byte) ([]byte, error) {
	if len(data) < 2*BlockSize || len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not an IV plus a positive multiple of %d", ErrMalformedCiphertext, len(data), BlockSize)
	}

	iv, body := data[:BlockSize], data[BlockSize:]
	plain := make([]byte, len(body))

	if err := c.decryptBlocks(plain, body, iv); err != nil {
		return nil, err
	}

	out, err := padding.Unpad(plain, BlockSize)
	if err != nil {
		secure.Zero(plain)
		return nil, err
	}
	return out, nil
}

// decryptBlocks fills plain. Block i only depends on ciphertext blocks i and
// i-1, so ranges of blocks are independent.
func (c *Cipher) decryptBlocks(plain, body, iv []byte) error {
	blocks := len(body) / BlockSize
	if c.workers < 2 || blocks < 2 {
		c.decryptRange(plain, body, iv, 0, blocks)
		return nil
	}

	workers := c.workers
	if workers > blocks {
		workers = blocks
	}
	per := (blocks + workers - 1) / workers

	var g errgroup.Group
	for start := 0; start < blocks; start += per {
		start, end := start, min(start+per, blocks)
		g.Go(func() error {
			c.decryptRange(plain, body, iv, start, end)
			return nil
		})
	}
	return g.Wait()
}

func (c *Cipher) decryptRange(plain, body, iv []byte, start, end int) {
	for i := start; i < end; i++ {
		off := i * BlockSize
		prev := iv
		if i > 0 {
			prev = body[off-BlockSize : off]
		}
		dst := plain[off : off+BlockSize]
		c.block.Decrypt(dst, body[off:off+BlockSize])
		xorBlock(dst, dst, prev)
	}
}

func xorBlock(dst, a, b []byte) {
	for i := 0; i < BlockSize; i++ {
		dst[i] = a[i] ^ b[i]
	}
}
