package aes

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Davincible/gfaes/pkg/crypto/gf"
	"github.com/Davincible/gfaes/pkg/crypto/sbox"
)

// ErrSingularMix is returned when the MixColumns matrix has no inverse under
// the chosen polynomial.
var ErrSingularMix = errors.New("aes: MixColumns matrix is not invertible in this field")

var mixMatrix = [4][4]byte{
	{2, 3, 1, 1},
	{1, 2, 3, 1},
	{1, 1, 2, 3},
	{3, 1, 1, 2},
}

// Engine applies the round transformations for one field. Under the AES
// polynomial its inverse MixColumns matrix is {14,11,13,9} rotated per row.
// An Engine is immutable and shared between ciphers.
type Engine struct {
	field  *gf.Field
	box    *sbox.Box
	invMix [4][4]byte
}

// NewEngine derives the S-box and inverse mixing matrix for f.
func NewEngine(f *gf.Field) (*Engine, error) {
	inv, ok := invert(mixMatrix, f)
	if !ok {
		return nil, fmt.Errorf("%w: polynomial 0x%X", ErrSingularMix, f.Polynomial())
	}
	return &Engine{
		field:  f,
		box:    sbox.ForField(f),
		invMix: inv,
	}, nil
}

var engines sync.Map // uint16 polynomial -> *Engine

// EngineFor returns the shared Engine for poly, building field tables on
// first use.
func EngineFor(poly uint16) (*Engine, error) {
	if v, ok := engines.Load(poly); ok {
		return v.(*Engine), nil
	}
	f, err := gf.New(poly)
	if err != nil {
		return nil, err
	}
	e, err := NewEngine(f)
	if err != nil {
		return nil, err
	}
	v, _ := engines.LoadOrStore(poly, e)
	return v.(*Engine), nil
}

// Field returns the engine's field.
func (e *Engine) Field() *gf.Field { return e.field }

// Box returns the engine's substitution tables.
func (e *Engine) Box() *sbox.Box { return e.box }

// InvMixMatrix returns the inverse MixColumns matrix in use.
func (e *Engine) InvMixMatrix() [4][4]byte { return e.invMix }

// SubBytes replaces every byte with its S-box value.
func (e *Engine) SubBytes(s State) State {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r][c] = e.box.Sub(s[r][c])
		}
	}
	return s
}

// InvSubBytes undoes SubBytes.
func (e *Engine) InvSubBytes(s State) State {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r][c] = e.box.InvSub(s[r][c])
		}
	}
	return s
}

// MixColumns multiplies every column by the fixed MixColumns matrix.
func (e *Engine) MixColumns(s State) State {
	return mix(s, e.field, &mixMatrix)
}

// InvMixColumns undoes MixColumns.
func (e *Engine) InvMixColumns(s State) State {
	return mix(s, e.field, &e.invMix)
}

// ShiftRows rotates row r left by r positions.
func ShiftRows(s State) State {
	var out State
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = s[r][(c+r)%4]
		}
	}
	return out
}

// InvShiftRows rotates row r right by r positions.
func InvShiftRows(s State) State {
	var out State
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][(c+r)%4] = s[r][c]
		}
	}
	return out
}

// AddRoundKey XORs the round key into the state. It is its own inverse.
func AddRoundKey(s State, key State) State {
	return s.Xor(key)
}

func mix(s State, f *gf.Field, m *[4][4]byte) State {
	var out State
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var acc byte
			for k := 0; k < 4; k++ {
				acc = f.Add(acc, f.Mul(m[r][k], s[k][c]))
			}
			out[r][c] = acc
		}
	}
	return out
}

// invert runs Gauss-Jordan elimination over f.
func invert(m [4][4]byte, f *gf.Field) ([4][4]byte, bool) {
	var inv [4][4]byte
	for i := range inv {
		inv[i][i] = 1
	}

	for col := 0; col < 4; col++ {
		pivot := -1
		for r := col; r < 4; r++ {
			if m[r][col] != 0 {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			return inv, false
		}
		m[col], m[pivot] = m[pivot], m[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		scale := f.Inverse(m[col][col])
		for k := 0; k < 4; k++ {
			m[col][k] = f.Mul(m[col][k], scale)
			inv[col][k] = f.Mul(inv[col][k], scale)
		}

		for r := 0; r < 4; r++ {
			if r == col || m[r][col] == 0 {
				continue
			}
			factor := m[r][col]
			for k := 0; k < 4; k++ {
				m[r][k] = f.Add(m[r][k], f.Mul(factor, m[col][k]))
				inv[r][k] = f.Add(inv[r][k], f.Mul(factor, inv[col][k]))
			}
		}
	}
	return inv, true
}
