// Package aes implements the AES block cipher over a configurable GF(2^8)
// field: the round transformations, the key schedule and single-block
// encryption and decryption.
//
// With the default polynomial 0x11B the output is bit-for-bit FIPS-197. The
// implementation uses table lookups and is not constant time.
package aes

import (
	"crypto/cipher"
	"fmt"

	"github.com/Davincible/gfaes/pkg/crypto/gf"
)

// Cipher is an AES instance with a fully expanded key. It holds no mutable
// state after construction and is safe for concurrent use.
type Cipher struct {
	engine *Engine
	keys   []State
	nr     int
}

var _ cipher.Block = (*Cipher)(nil)

type options struct {
	poly uint16
}

// Option configures NewCipher.
type Option func(*options)

// WithPolynomial selects the irreducible polynomial of the underlying field.
func WithPolynomial(poly uint16) Option {
	return func(o *options) {
		o.poly = poly
	}
}

// NewCipher expands key, which must be 16, 24 or 32 bytes.
func NewCipher(key []byte, opts ...Option) (*Cipher, error) {
	o := options{poly: gf.AESPolynomial}
	for _, opt := range opts {
		opt(&o)
	}

	nr, err := Rounds(len(key))
	if err != nil {
		return nil, err
	}

	engine, err := EngineFor(o.poly)
	if err != nil {
		return nil, fmt.Errorf("failed to build field: %w", err)
	}

	keys, err := ExpandKey(key, engine)
	if err != nil {
		return nil, err
	}

	return &Cipher{
		engine: engine,
		keys:   keys,
		nr:     nr,
	}, nil
}

// Rounds returns Nr.
func (c *Cipher) Rounds() int { return c.nr }

// Engine returns the round transformation engine.
func (c *Cipher) Engine() *Engine { return c.engine }

// RoundKeys returns a copy of the expanded key.
func (c *Cipher) RoundKeys() []State {
	out := make([]State, len(c.keys))
	copy(out, c.keys)
	return out
}

// BlockSize implements cipher.Block.
func (c *Cipher) BlockSize() int { return BlockSize }

// Step names a single transformation, reported to a TraceFunc.
type Step string

const (
	StepAddRoundKey   Step = "AddRoundKey"
	StepSubBytes      Step = "SubBytes"
	StepShiftRows     Step = "ShiftRows"
	StepMixColumns    Step = "MixColumns"
	StepInvSubBytes   Step = "InvSubBytes"
	StepInvShiftRows  Step = "InvShiftRows"
	StepInvMixColumns Step = "InvMixColumns"
)

// TraceFunc observes the state after each transformation.
type TraceFunc func(round int, step Step, s State)

// CipherBlock encrypts one state.
func (c *Cipher) CipherBlock(s State) State {
	return c.cipher(s, nil)
}

// InvCipherBlock decrypts one state.
func (c *Cipher) InvCipherBlock(s State) State {
	return c.invCipher(s, nil)
}

// TraceCipherBlock encrypts s and reports every intermediate state to fn.
func (c *Cipher) TraceCipherBlock(s State, fn TraceFunc) State {
	return c.cipher(s, fn)
}

// TraceInvCipherBlock decrypts s and reports every intermediate state to fn.
func (c *Cipher) TraceInvCipherBlock(s State, fn TraceFunc) State {
	return c.invCipher(s, fn)
}

func (c *Cipher) cipher(s State, fn TraceFunc) State {
	emit := func(round int, step Step) {
		if fn != nil {
			fn(round, step, s)
		}
	}
	e := c.engine

	s = AddRoundKey(s, c.keys[0])
	emit(0, StepAddRoundKey)

	for round := 1; round < c.nr; round++ {
		s = e.SubBytes(s)
		emit(round, StepSubBytes)
		s = ShiftRows(s)
		emit(round, StepShiftRows)
		s = e.MixColumns(s)
		emit(round, StepMixColumns)
		s = AddRoundKey(s, c.keys[round])
		emit(round, StepAddRoundKey)
	}

	s = e.SubBytes(s)
	emit(c.nr, StepSubBytes)
	s = ShiftRows(s)
	emit(c.nr, StepShiftRows)
	s = AddRoundKey(s, c.keys[c.nr])
	emit(c.nr, StepAddRoundKey)

	return s
}

func (c *Cipher) invCipher(s State, fn TraceFunc) State {
	emit := func(round int, step Step) {
		if fn != nil {
			fn(round, step, s)
		}
	}
	e := c.engine

	s = AddRoundKey(s, c.keys[c.nr])
	emit(c.nr, StepAddRoundKey)

	for round := c.nr - 1; round > 0; round-- {
		s = InvShiftRows(s)
		emit(round, StepInvShiftRows)
		s = e.InvSubBytes(s)
		emit(round, StepInvSubBytes)
		s = AddRoundKey(s, c.keys[round])
		emit(round, StepAddRoundKey)
		s = e.InvMixColumns(s)
		emit(round, StepInvMixColumns)
	}

	s = InvShiftRows(s)
	emit(0, StepInvShiftRows)
	s = e.InvSubBytes(s)
	emit(0, StepInvSubBytes)
	s = AddRoundKey(s, c.keys[0])
	emit(0, StepAddRoundKey)

	return s
}

// Encrypt implements cipher.Block. dst and src may overlap entirely.
func (c *Cipher) Encrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("aes: input not full block")
	}
	if len(dst) < BlockSize {
		panic("aes: output not full block")
	}
	c.CipherBlock(loadState(src)).put(dst)
}

// Decrypt implements cipher.Block. dst and src may overlap entirely.
func (c *Cipher) Decrypt(dst, src []byte) {
	if len(src) < BlockSize {
		panic("aes: input not full block")
	}
	if len(dst) < BlockSize {
		panic("aes: output not full block")
	}
	c.InvCipherBlock(loadState(src)).put(dst)
}
