// Package gf implements arithmetic in GF(2^8) under a configurable irreducible
// polynomial. Elements are plain bytes; multiplication, inversion and division
// go through exp/log tables built from a discovered multiplicative generator.
package gf

import (
	"errors"
	"fmt"
)

// AESPolynomial is x^8 + x^4 + x^3 + x + 1, the Rijndael reduction polynomial.
const AESPolynomial uint16 = 0x11B

const (
	order    = 255 // size of the multiplicative group
	expTable = 2 * order
)

var (
	// ErrInvalidPolynomial is returned for polynomials that are not of degree 8.
	ErrInvalidPolynomial = errors.New("gf: polynomial must have degree 8")
	// ErrNoGenerator is returned when no element generates the multiplicative
	// group, which means the polynomial is reducible.
	ErrNoGenerator = errors.New("gf: no multiplicative generator, polynomial is not irreducible")
)

// Field holds the lookup tables for one irreducible polynomial. It is
// immutable after New returns and safe for concurrent use.
type Field struct {
	poly      uint16
	generator byte
	exp       [expTable]byte
	log       [256]byte
}

// New builds the field defined by poly. poly includes the x^8 term, e.g. 0x11B.
func New(poly uint16) (*Field, error) {
	if poly < 0x100 || poly > 0x1FF {
		return nil, fmt.Errorf("%w: 0x%X", ErrInvalidPolynomial, poly)
	}

	f := &Field{poly: poly}

	g, ok := f.findGenerator()
	if !ok {
		return nil, fmt.Errorf("%w: 0x%X", ErrNoGenerator, poly)
	}
	f.generator = g
	f.buildTables()

	return f, nil
}

// MustNew is like New but panics on error. Intended for package-level
// initialisation with known-good polynomials.
func MustNew(poly uint16) *Field {
	f, err := New(poly)
	if err != nil {
		panic(err)
	}
	return f
}

// findGenerator scans 2..255 for the first element whose powers cover every
// nonzero element.
func (f *Field) findGenerator() (byte, bool) {
	for candidate := 2; candidate < 256; candidate++ {
		var seen [256]bool
		count := 0
		x := byte(1)
		for i := 0; i < order && x != 0; i++ {
			if !seen[x] {
				seen[x] = true
				count++
			}
			x = f.SlowMul(x, byte(candidate))
		}
		if count == order {
			return byte(candidate), true
		}
	}
	return 0, false
}

func (f *Field) buildTables() {
	x := byte(1)
	for i := 0; i < order; i++ {
		f.exp[i] = x
		f.log[x] = byte(i)
		x = f.SlowMul(x, f.generator)
	}
	// Doubled so that log sums up to 2*254 index without reduction.
	for i := order; i < expTable; i++ {
		f.exp[i] = f.exp[i-order]
	}
}

// Polynomial returns the reduction polynomial, including the x^8 term.
func (f *Field) Polynomial() uint16 {
	return f.poly
}

// Generator returns the multiplicative generator the tables were built from.
func (f *Field) Generator() byte {
	return f.generator
}

// Add returns a + b, which in characteristic 2 is XOR. Subtraction is the same.
func (f *Field) Add(a, b byte) byte {
	return a ^ b
}

// MulX multiplies n by x, reducing by the field polynomial on overflow.
func (f *Field) MulX(n byte) byte {
	r := uint16(n) << 1
	if r&0x100 != 0 {
		r ^= f.poly
	}
	return byte(r)
}

// SlowMul multiplies by shift-and-add. Only used to bootstrap the tables.
func (f *Field) SlowMul(a, b byte) byte {
	var result byte
	for b > 0 {
		if b&1 == 1 {
			result ^= a
		}
		a = f.MulX(a)
		b >>= 1
	}
	return result
}

// Mul multiplies a and b using the exp/log tables.
func (f *Field) Mul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return f.exp[int(f.log[a])+int(f.log[b])]
}

// Inverse returns the multiplicative inverse of n. Zero maps to zero by
// convention.
func (f *Field) Inverse(n byte) byte {
	if n == 0 {
		return 0
	}
	return f.exp[order-int(f.log[n])]
}

// Div returns a / b. Either operand being zero yields zero.
func (f *Field) Div(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	// Biased by the group order so the index never goes negative.
	return f.exp[int(f.log[a])-int(f.log[b])+order]
}

// Exp returns generator^i for i in [0, 510).
func (f *Field) Exp(i int) byte {
	return f.exp[i]
}

// Log returns the discrete logarithm of a nonzero n. Log(0) is meaningless
// and returns 0.
func (f *Field) Log(n byte) int {
	return int(f.log[n])
}

// Pow returns a^n.
func (f *Field) Pow(a byte, n int) byte {
	if n == 0 {
		return 1
	}
	if a == 0 {
		return 0
	}
	e := (int(f.log[a]) * n) % order
	if e < 0 {
		e += order
	}
	return f.exp[e]
}
