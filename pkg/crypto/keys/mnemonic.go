package keys

import (
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

// ToMnemonic encodes a 16, 24 or 32-byte key as 12, 18 or 24 BIP-39 words.
func ToMnemonic(key []byte) (string, error) {
	if err := checkSize(len(key)); err != nil {
		return "", err
	}
	words, err := bip39.NewMnemonic(key)
	if err != nil {
		return "", fmt.Errorf("failed to encode key as mnemonic: %w", err)
	}
	return words, nil
}

// FromMnemonic recovers the key bytes a mnemonic encodes. The checksum word
// is verified.
func FromMnemonic(words string) ([]byte, error) {
	words = strings.Join(strings.Fields(strings.ToLower(words)), " ")
	if !bip39.IsMnemonicValid(words) {
		return nil, fmt.Errorf("invalid mnemonic phrase")
	}

	key, err := bip39.EntropyFromMnemonic(words)
	if err != nil {
		return nil, fmt.Errorf("failed to decode mnemonic: %w", err)
	}
	if err := checkSize(len(key)); err != nil {
		return nil, err
	}
	return key, nil
}

// WordCount returns the number of mnemonic words for a key of size bytes.
func WordCount(size int) (int, error) {
	switch size {
	case 16:
		return 12, nil
	case 24:
		return 18, nil
	case 32:
		return 24, nil
	default:
		return 0, checkSize(size)
	}
}
