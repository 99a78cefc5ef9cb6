package validation

import (
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/tyler-smith/go-bip39"

	"github.com/Davincible/gfaes/internal/output"
)

// MaxTypoDistance is the largest edit distance for which a suggestion is made.
const MaxTypoDistance = 2

var hexPattern = regexp.MustCompile(`^[0-9a-fA-F]+$`)

// stripHexPrefix trims whitespace and an optional 0x or 0X prefix.
func stripHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func ValidateHex(input string) error {
	input = stripHexPrefix(input)
	if len(input) == 0 {
		return fmt.Errorf("hex string cannot be empty")
	}

	if len(input)%2 != 0 {
		return fmt.Errorf("hex string must have even length")
	}

	if !hexPattern.MatchString(input) {
		return fmt.Errorf("invalid hex characters")
	}

	return nil
}

// ValidateKeyHex checks that input is a hex encoded 128, 192 or 256-bit key.
func ValidateKeyHex(input string) error {
	if err := ValidateHex(input); err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}

	n := len(stripHexPrefix(input)) / 2
	switch n {
	case 16, 24, 32:
		return nil
	}
	return fmt.Errorf("key must be 16, 24 or 32 bytes (got %d)", n)
}

// DecodeBlockHex decodes exactly one 16-byte block.
func DecodeBlockHex(input string) ([]byte, error) {
	if err := ValidateHex(input); err != nil {
		return nil, fmt.Errorf("invalid block: %w", err)
	}

	data, err := hex.DecodeString(stripHexPrefix(input))
	if err != nil {
		return nil, fmt.Errorf("failed to decode block: %w", err)
	}
	if len(data) != 16 {
		return nil, fmt.Errorf("block must be 16 bytes (got %d)", len(data))
	}
	return data, nil
}

func ValidateShare(share string) error {
	if err := ValidateHex(share); err != nil {
		return fmt.Errorf("invalid share format: %w", err)
	}

	data, err := hex.DecodeString(strings.TrimSpace(share))
	if err != nil {
		return fmt.Errorf("failed to decode share: %w", err)
	}

	// Vault shares carry a one byte x coordinate after the key bytes.
	switch len(data) {
	case 17, 25, 33:
		return nil
	}
	return fmt.Errorf("share has invalid length %d", len(data))
}

// ValidateMnemonic checks the word count and that every word is in the
// BIP-39 list, suggesting a correction for near misses.
func ValidateMnemonic(words string) error {
	words = strings.TrimSpace(strings.ToLower(words))
	if words == "" {
		return fmt.Errorf("mnemonic cannot be empty")
	}

	wordList := strings.Fields(words)
	switch len(wordList) {
	case 12, 18, 24:
	default:
		return fmt.Errorf("mnemonic must have 12, 18 or 24 words (got %d)", len(wordList))
	}

	known := bip39.GetWordIndex
	for i, word := range wordList {
		if _, ok := known(word); ok {
			continue
		}
		if s := SuggestWord(word); s != "" {
			return fmt.Errorf("word %d %q is not a mnemonic word, did you mean %q?", i+1, word, s)
		}
		return fmt.Errorf("word %d %q is not a mnemonic word", i+1, word)
	}

	return nil
}

// SuggestWord finds the closest mnemonic word to input, or "" when none is
// within MaxTypoDistance.
func SuggestWord(input string) string {
	return closest(strings.ToLower(input), bip39.GetWordList())
}

func closest(input string, candidates []string) string {
	minDist := math.MaxInt
	var suggestion string

	for _, c := range candidates {
		dist := levenshtein.ComputeDistance(input, c)
		if dist == 0 {
			return c
		}
		if dist < minDist {
			minDist = dist
			suggestion = c
		}
	}

	if minDist <= MaxTypoDistance {
		return suggestion
	}
	return ""
}

func ValidateSplitParams(parts, threshold int) error {
	if parts < 2 || parts > 255 {
		return fmt.Errorf("parts must be between 2 and 255 (got %d)", parts)
	}

	if threshold < 2 || threshold > parts {
		return fmt.Errorf("threshold must be between 2 and %d (got %d)", parts, threshold)
	}

	return nil
}

func ValidatePassphrase(passphrase string, minLength int) error {
	if len(passphrase) < minLength {
		return fmt.Errorf("passphrase must be at least %d characters", minLength)
	}

	if len(passphrase) > 256 {
		return fmt.Errorf("passphrase too long (max 256 characters)")
	}

	for i, ch := range passphrase {
		if ch == 0 {
			return fmt.Errorf("passphrase contains null character at position %d", i)
		}
	}

	return nil
}

// ParseFormat resolves a display format name. Aliases such as "binary"
// are accepted and close misspellings get a suggestion.
func ParseFormat(name string) (output.Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case "hex", "hexadecimal", "x":
		return output.FormatHex, nil
	case "bin", "binary", "b":
		return output.FormatBin, nil
	case "dec", "decimal", "d":
		return output.FormatDec, nil
	}

	names := []string{"hex", "bin", "dec", "hexadecimal", "binary", "decimal"}
	if s := closest(name, names); s != "" {
		return "", fmt.Errorf("unknown format %q, did you mean %q?", name, s)
	}
	return "", fmt.Errorf("unknown format %q (use hex, bin or dec)", name)
}

// ParseByte reads a field element written as 0x1b, 0b11011 or 27. Bare
// strings are read as hex, matching how the tables are printed.
func ParseByte(s string) (byte, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	base := 16
	switch {
	case strings.HasPrefix(s, "0x"):
		s = s[2:]
	case strings.HasPrefix(s, "0b"):
		s, base = s[2:], 2
	case strings.HasPrefix(s, "d:"):
		s, base = s[2:], 10
	}

	v, err := strconv.ParseUint(s, base, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid field element %q: must be a byte (0x00-0xff)", s)
	}
	return byte(v), nil
}

func SanitizeInput(input string) string {
	input = strings.TrimSpace(input)

	input = strings.ReplaceAll(input, "\r\n", "\n")
	input = strings.ReplaceAll(input, "\r", "\n")

	lines := strings.Split(input, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	return strings.Join(lines, "\n")
}
