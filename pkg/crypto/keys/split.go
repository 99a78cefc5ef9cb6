package keys

import (
	"fmt"

	"github.com/hashicorp/vault/shamir"
)

// SplitConfig controls how a key is split into backup shares.
type SplitConfig struct {
	Parts     int
	Threshold int
}

// Validate checks the share counts.
func (c SplitConfig) Validate() error {
	if c.Parts < 2 {
		return fmt.Errorf("parts must be at least 2, got %d", c.Parts)
	}
	if c.Threshold < 2 {
		return fmt.Errorf("threshold must be at least 2, got %d", c.Threshold)
	}
	if c.Threshold > c.Parts {
		return fmt.Errorf("threshold (%d) cannot be greater than parts (%d)", c.Threshold, c.Parts)
	}
	if c.Parts > 255 {
		return fmt.Errorf("parts cannot exceed 255, got %d", c.Parts)
	}
	return nil
}

// Split splits key into Shamir shares; any Threshold of them recover it.
func Split(key []byte, config SplitConfig) ([][]byte, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid split config: %w", err)
	}
	if err := checkSize(len(key)); err != nil {
		return nil, err
	}

	shares, err := shamir.Split(key, config.Parts, config.Threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to split key: %w", err)
	}
	return shares, nil
}

// Combine recovers a key from shares. With fewer than the threshold the
// result is a wrong key of the right length, which is caught only when
// decryption fails.
func Combine(shares [][]byte) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("at least 2 shares are required for reconstruction")
	}
	for i, s := range shares {
		if len(s) == 0 {
			return nil, fmt.Errorf("share %d has empty data", i+1)
		}
	}

	key, err := shamir.Combine(shares)
	if err != nil {
		return nil, fmt.Errorf("failed to combine shares: %w", err)
	}
	if err := checkSize(len(key)); err != nil {
		return nil, fmt.Errorf("combined shares do not form a key: %w", err)
	}
	return key, nil
}
