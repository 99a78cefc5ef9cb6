package aes

import (
	"errors"
	"strconv"

	"github.com/Davincible/gfaes/pkg/crypto/gf"
	"github.com/Davincible/gfaes/pkg/crypto/sbox"
)

// ErrInvalidKeySize matches any KeySizeError through errors.Is.
var ErrInvalidKeySize = errors.New("aes: invalid key size")

// KeySizeError reports a key that is not 16, 24 or 32 bytes long.
type KeySizeError int

func (k KeySizeError) Error() string {
	return "aes: invalid key size " + strconv.Itoa(int(k))
}

// Is reports whether target is ErrInvalidKeySize.
func (k KeySizeError) Is(target error) bool {
	return target == ErrInvalidKeySize
}

// Rounds returns Nr for a key of keyLen bytes.
func Rounds(keyLen int) (int, error) {
	switch keyLen {
	case 16:
		return 10, nil
	case 24:
		return 12, nil
	case 32:
		return 14, nil
	default:
		return 0, KeySizeError(keyLen)
	}
}

// RotWord rotates a word left by one byte.
func RotWord(w Word) Word {
	return Word{w[1], w[2], w[3], w[0]}
}

// SubWord substitutes every byte of w through the S-box.
func SubWord(w Word, box *sbox.Box) Word {
	return Word{box.Sub(w[0]), box.Sub(w[1]), box.Sub(w[2]), box.Sub(w[3])}
}

// ExpandKey runs the FIPS-197 key expansion and returns Nr+1 round keys.
func ExpandKey(key []byte, e *Engine) ([]State, error) {
	return expandKey(key, e.field, e.box)
}

func expandKey(key []byte, f *gf.Field, box *sbox.Box) ([]State, error) {
	nr, err := Rounds(len(key))
	if err != nil {
		return nil, err
	}
	nk := len(key) / 4
	total := 4 * (nr + 1)

	words := make([]Word, total)
	for i := 0; i < nk; i++ {
		copy(words[i][:], key[4*i:4*i+4])
	}

	rcon := Word{1, 0, 0, 0}
	for i := nk; i < total; i++ {
		temp := words[i-1]
		switch {
		case i%nk == 0:
			temp = SubWord(RotWord(temp), box).xor(rcon)
			rcon[0] = f.MulX(rcon[0])
		case nk > 6 && i%nk == 4:
			temp = SubWord(temp, box)
		}
		words[i] = words[i-nk].xor(temp)
	}

	keys := make([]State, nr+1)
	for round := range keys {
		for c := 0; c < 4; c++ {
			w := words[4*round+c]
			for r := 0; r < 4; r++ {
				keys[round][r][c] = w[r]
			}
		}
	}
	return keys, nil
}
