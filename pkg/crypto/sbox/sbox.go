// Package sbox derives the Rijndael substitution tables from a GF(2^8) field.
package sbox

import (
	"math/bits"
	"sync"

	"github.com/Davincible/gfaes/pkg/crypto/gf"
)

// AffineConstant is XORed into every output of the affine transform.
const AffineConstant byte = 0x63

// affineRows selects, for each output bit from most to least significant,
// which input bits are summed.
var affineRows = [8]byte{
	0b11111000,
	0b01111100,
	0b00111110,
	0b00011111,
	0b10001111,
	0b11000111,
	0b11100011,
	0b11110001,
}

// Box holds a forward and inverse substitution table. Inverse[Forward[x]] == x
// for every byte x.
type Box struct {
	forward [256]byte
	inverse [256]byte
}

// New builds the substitution tables for field f.
func New(f *gf.Field) *Box {
	b := &Box{}
	b.forward[0] = AffineConstant
	b.inverse[AffineConstant] = 0

	for i := 1; i < 256; i++ {
		out := affine(f.Inverse(byte(i)))
		b.forward[i] = out
		b.inverse[out] = byte(i)
	}
	return b
}

func affine(in byte) byte {
	var out byte
	for _, row := range affineRows {
		out = out<<1 | byte(bits.OnesCount8(row&in)&1)
	}
	return out ^ AffineConstant
}

// Sub returns the forward substitution of x.
func (b *Box) Sub(x byte) byte { return b.forward[x] }

// InvSub returns the inverse substitution of x.
func (b *Box) InvSub(x byte) byte { return b.inverse[x] }

// Forward returns a copy of the forward table.
func (b *Box) Forward() [256]byte { return b.forward }

// Inverse returns a copy of the inverse table.
func (b *Box) Inverse() [256]byte { return b.inverse }

var cache sync.Map // uint16 polynomial -> *Box

// ForField returns the cached Box for f's polynomial, building it on first use.
func ForField(f *gf.Field) *Box {
	if v, ok := cache.Load(f.Polynomial()); ok {
		return v.(*Box)
	}
	v, _ := cache.LoadOrStore(f.Polynomial(), New(f))
	return v.(*Box)
}
