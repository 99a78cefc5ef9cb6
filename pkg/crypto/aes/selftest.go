package aes

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// KnownAnswer is a published single-block test vector for the AES field.
type KnownAnswer struct {
	Name       string
	Key        string
	Plaintext  string
	Ciphertext string
	Rounds     int
}

// KnownAnswers are the FIPS-197 Appendix C vectors plus the Appendix B
// worked example.
var KnownAnswers = []KnownAnswer{
	{
		Name:       "AES-128",
		Key:        "000102030405060708090a0b0c0d0e0f",
		Plaintext:  "00112233445566778899aabbccddeeff",
		Ciphertext: "69c4e0d86a7b0430d8cdb78070b4c55a",
		Rounds:     10,
	},
	{
		Name:       "AES-192",
		Key:        "000102030405060708090a0b0c0d0e0f1011121314151617",
		Plaintext:  "00112233445566778899aabbccddeeff",
		Ciphertext: "dda97ca4864cdfe06eaf70a0ec0d7191",
		Rounds:     12,
	},
	{
		Name:       "AES-256",
		Key:        "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f",
		Plaintext:  "00112233445566778899aabbccddeeff",
		Ciphertext: "8ea2b7ca516745bfeafc49904b496089",
		Rounds:     14,
	},
	{
		Name:       "Appendix B",
		Key:        "2b7e151628aed2a6abf7158809cf4f3c",
		Plaintext:  "3243f6a8885a308d313198a2e0370734",
		Ciphertext: "3925841d02dc09fbdc118597196a0b32",
		Rounds:     10,
	},
}

// Check runs the vector through the cipher in both directions.
func (ka KnownAnswer) Check() error {
	key, err := hex.DecodeString(ka.Key)
	if err != nil {
		return err
	}
	pt, err := hex.DecodeString(ka.Plaintext)
	if err != nil {
		return err
	}
	want, err := hex.DecodeString(ka.Ciphertext)
	if err != nil {
		return err
	}

	c, err := NewCipher(key)
	if err != nil {
		return err
	}
	if c.Rounds() != ka.Rounds {
		return fmt.Errorf("%s: got %d rounds, want %d", ka.Name, c.Rounds(), ka.Rounds)
	}

	got := make([]byte, BlockSize)
	c.Encrypt(got, pt)
	if !bytes.Equal(got, want) {
		return fmt.Errorf("%s: encrypt got %x, want %x", ka.Name, got, want)
	}

	c.Decrypt(got, got)
	if !bytes.Equal(got, pt) {
		return fmt.Errorf("%s: decrypt got %x, want %x", ka.Name, got, pt)
	}
	return nil
}
