package aes

import "fmt"

// BlockSize is the AES block size in bytes.
const BlockSize = 16

// State is the 4x4 byte matrix one block is processed in, indexed [row][column].
// It is a value type: every transformation returns a new State.
type State [4][4]byte

// StateFromBytes loads a 16-byte block column-major: byte i goes to row i%4,
// column i/4.
func StateFromBytes(b []byte) (State, error) {
	var s State
	if len(b) != BlockSize {
		return s, fmt.Errorf("aes: state needs %d bytes, got %d", BlockSize, len(b))
	}
	for i, v := range b {
		s[i%4][i/4] = v
	}
	return s, nil
}

func loadState(b []byte) State {
	var s State
	for i := 0; i < BlockSize; i++ {
		s[i%4][i/4] = b[i]
	}
	return s
}

// Bytes serializes the state column-major, the inverse of StateFromBytes.
func (s State) Bytes() []byte {
	out := make([]byte, BlockSize)
	s.put(out)
	return out
}

func (s State) put(dst []byte) {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			dst[4*c+r] = s[r][c]
		}
	}
}

// Column returns column c as a 4-byte word.
func (s State) Column(c int) Word {
	return Word{s[0][c], s[1][c], s[2][c], s[3][c]}
}

// Xor returns the elementwise XOR of s and o.
func (s State) Xor(o State) State {
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			s[r][c] ^= o[r][c]
		}
	}
	return s
}

// Word is one 4-byte column of a key or state.
type Word [4]byte

func (w Word) xor(o Word) Word {
	return Word{w[0] ^ o[0], w[1] ^ o[1], w[2] ^ o[2], w[3] ^ o[3]}
}
