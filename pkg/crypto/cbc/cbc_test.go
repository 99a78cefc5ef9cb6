package cbc

import (
	"bytes"
	stdaes "crypto/aes"
	"crypto/cipher"
	"encoding/hex"
	"testing"

	"github.com/Davincible/gfaes/pkg/crypto/aes"
	"github.com/Davincible/gfaes/pkg/crypto/padding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCBC(t *testing.T, key []byte, opts ...Option) *Cipher {
	t.Helper()
	block, err := aes.NewCipher(key)
	require.NoError(t, err)
	c, err := New(block, opts...)
	require.NoError(t, err)
	return c
}

func keyOfSize(n int) []byte {
	key := make([]byte, n)
	for i := range key {
		key[i] = byte(i*7 + 3)
	}
	return key
}

func TestRoundTrip(t *testing.T) {
	for _, size := range []int{16, 24, 32} {
		c := newCBC(t, keyOfSize(size))

		for n := 0; n <= 1000; n++ {
			data := bytes.Repeat([]byte{byte(n)}, n)
			enc, err := c.Encrypt(data)
			require.NoError(t, err)

			wantLen := BlockSize + n + (BlockSize - n%BlockSize)
			require.Len(t, enc, wantLen, "key %d length %d", size, n)

			dec, err := c.Decrypt(enc)
			require.NoError(t, err, "key %d length %d", size, n)
			require.Equal(t, data, dec)
		}
	}
}

func TestAlignedInputGetsFullPaddingBlock(t *testing.T) {
	c := newCBC(t, keyOfSize(16))

	for _, n := range []int{0, 16, 32, 48} {
		enc, err := c.Encrypt(make([]byte, n))
		require.NoError(t, err)
		assert.Len(t, enc, BlockSize+n+BlockSize)
	}
}

func TestSP800_38A(t *testing.T) {
	key, _ := hex.DecodeString("2b7e151628aed2a6abf7158809cf4f3c")
	iv, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	plaintext, _ := hex.DecodeString(
		"6bc1bee22e409f96e93d7e117393172a" +
			"ae2d8a571e03ac9c9eb76fac45af8e51" +
			"30c81c46a35ce411e5fbc1191a0a52ef" +
			"f69f2445df4f9b17ad2b417be66c3710")
	want := "7649abac8119b246cee98e9b12e9197d" +
		"5086cb9b507219ee95db113a917678b2" +
		"73bed6b8e3c1743b7116e69e22229516" +
		"3ff1caa1681fac09120eca307586e1a7"

	c := newCBC(t, key)
	out, err := c.EncryptWithIV(plaintext, iv)
	require.NoError(t, err)

	assert.Equal(t, iv, out[:BlockSize])
	assert.Equal(t, want, hex.EncodeToString(out[BlockSize:BlockSize+len(plaintext)]))

	dec, err := c.Decrypt(out)
	require.NoError(t, err)
	assert.Equal(t, plaintext, dec)
}

func TestMatchesStandardLibraryCBC(t *testing.T) {
	key := keyOfSize(32)
	iv := bytes.Repeat([]byte{0x5c}, BlockSize)
	data := []byte("The quick brown fox jumps over the lazy dog, twice over.")

	c := newCBC(t, key)
	ours, err := c.EncryptWithIV(data, iv)
	require.NoError(t, err)

	block, err := stdaes.NewCipher(key)
	require.NoError(t, err)
	padded := padding.Pad(data, BlockSize)
	want := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(want, padded)

	assert.Equal(t, want, ours[BlockSize:])
}

func TestRandomIV(t *testing.T) {
	c := newCBC(t, keyOfSize(16))
	data := []byte("same message")

	a, err := c.Encrypt(data)
	require.NoError(t, err)
	b, err := c.Encrypt(data)
	require.NoError(t, err)

	assert.NotEqual(t, a[:BlockSize], b[:BlockSize])
	assert.NotEqual(t, a, b)
}

func TestDeterministicRandomSource(t *testing.T) {
	ivSource := bytes.NewReader(bytes.Repeat([]byte{0x01}, BlockSize))
	c := newCBC(t, keyOfSize(16), WithRandom(ivSource))

	out, err := c.Encrypt([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, bytes.Repeat([]byte{0x01}, BlockSize), out[:BlockSize])

	_, err = c.Encrypt([]byte("x"))
	assert.Error(t, err, "exhausted IV source must fail")
}

func TestParallelDecryptMatchesSequential(t *testing.T) {
	data := bytes.Repeat([]byte("parallel blocks "), 257)
	seq := newCBC(t, keyOfSize(24))

	enc, err := seq.Encrypt(data)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8, 1000} {
		par := newCBC(t, keyOfSize(24), WithWorkers(workers))
		dec, err := par.Decrypt(enc)
		require.NoError(t, err, "workers %d", workers)
		assert.Equal(t, data, dec)
	}
}

func TestDecryptMalformed(t *testing.T) {
	c := newCBC(t, keyOfSize(16))

	tests := []struct {
		name   string
		length int
	}{
		{"Empty", 0},
		{"Truncated IV", 10},
		{"IV only", 16},
		{"Not block aligned", 40},
		{"One byte over", 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := c.Decrypt(make([]byte, tt.length))
			assert.ErrorIs(t, err, ErrMalformedCiphertext)
			assert.NotErrorIs(t, err, padding.ErrInvalidPadding)
			assert.Nil(t, out)
		})
	}
}

func TestDecryptBadPadding(t *testing.T) {
	c := newCBC(t, keyOfSize(16))

	// Aligned input: the final plaintext block is sixteen 0x10 bytes.
	enc, err := c.Encrypt(make([]byte, 32))
	require.NoError(t, err)

	// Flipping the previous ciphertext block turns the last pad byte into 0.
	enc[len(enc)-BlockSize-1] ^= 0x10

	out, err := c.Decrypt(enc)
	assert.ErrorIs(t, err, padding.ErrInvalidPadding)
	assert.NotErrorIs(t, err, ErrMalformedCiphertext)
	assert.Nil(t, out)
}

func TestErrorPropagation(t *testing.T) {
	c := newCBC(t, keyOfSize(16))
	data := bytes.Repeat([]byte("0123456789abcdef"), 6)

	enc, err := c.Encrypt(data)
	require.NoError(t, err)

	const tampered = 2 // ciphertext block index
	const pos = 5
	enc[BlockSize+tampered*BlockSize+pos] ^= 0x01

	dec, err := c.Decrypt(enc)
	require.NoError(t, err)
	require.Len(t, dec, len(data))

	for blk := 0; blk < len(data)/BlockSize; blk++ {
		got := dec[blk*BlockSize : (blk+1)*BlockSize]
		want := data[blk*BlockSize : (blk+1)*BlockSize]

		switch blk {
		case tampered:
			assert.NotEqual(t, want, got, "tampered block must be garbled")
		case tampered + 1:
			diff := make([]byte, BlockSize)
			for i := range diff {
				diff[i] = got[i] ^ want[i]
			}
			expected := make([]byte, BlockSize)
			expected[pos] = 0x01
			assert.Equal(t, expected, diff, "next block differs by the same single bit")
		default:
			assert.Equal(t, want, got, "block %d must be intact", blk)
		}
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	des := fakeBlock{size: 8}
	_, err = New(des)
	assert.Error(t, err)

	c := newCBC(t, keyOfSize(16))
	_, err = c.EncryptWithIV([]byte("x"), make([]byte, 8))
	assert.Error(t, err)
}

type fakeBlock struct{ size int }

func (f fakeBlock) BlockSize() int          { return f.size }
func (f fakeBlock) Encrypt(dst, src []byte) { copy(dst, src) }
func (f fakeBlock) Decrypt(dst, src []byte) { copy(dst, src) }
