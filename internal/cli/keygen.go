package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Davincible/gfaes/internal/output"
	"github.com/Davincible/gfaes/internal/validation"
	"github.com/Davincible/gfaes/pkg/crypto/keys"
	"github.com/Davincible/gfaes/pkg/secure"
)

type keygenResult struct {
	Key       string   `json:"key"`
	Bits      int      `json:"bits"`
	Mnemonic  string   `json:"mnemonic,omitempty"`
	Threshold int      `json:"threshold,omitempty"`
	Shares    []string `json:"shares,omitempty"`
}

func NewKeygenCommand() *cobra.Command {
	var (
		size         int
		withMnemonic bool
		parts        int
		threshold    int
	)

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a random AES key",
		Long: `Generate a random 128, 192 or 256-bit AES key.

The key can also be shown as a BIP-39 mnemonic, which 'encrypt' and
'decrypt' accept via --mnemonic, and split into Shamir shares for backup.`,
		Example: `  # 256-bit key as hex
  gfaes keygen

  # 128-bit key with its 12-word mnemonic
  gfaes keygen --size 16 --mnemonic

  # Back the key up as 5 shares, any 3 of which recover it
  gfaes keygen --split 5 --threshold 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("size") {
				size = cfg.Cipher.KeySize
			}
			if !keys.ValidSize(size) {
				return invalidInput("size must be 16, 24 or 32 bytes (got %d)", size)
			}

			splitting := parts > 0 || threshold > 0
			if splitting {
				if err := validation.ValidateSplitParams(parts, threshold); err != nil {
					return asInput(err)
				}
			}

			key, err := keys.Generate(size)
			if err != nil {
				return fmt.Errorf("failed to generate key: %w", err)
			}
			defer secure.Zero(key)

			result := keygenResult{
				Key:  hex.EncodeToString(key),
				Bits: size * 8,
			}

			if withMnemonic {
				words, err := keys.ToMnemonic(key)
				if err != nil {
					return err
				}
				result.Mnemonic = words
			}

			if splitting {
				shares, err := keys.Split(key, keys.SplitConfig{Parts: parts, Threshold: threshold})
				if err != nil {
					return err
				}
				result.Threshold = threshold
				for _, s := range shares {
					result.Shares = append(result.Shares, hex.EncodeToString(s))
				}
			}

			slog.Debug("generated key", "bits", result.Bits, "shares", len(result.Shares))

			if outputJSON, _ := cmd.Flags().GetBool("json"); outputJSON {
				return output.PrintJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			green.Fprintf(w, "Generated %d-bit key\n", result.Bits)
			fmt.Fprintf(w, "Key: %s\n", result.Key)
			if result.Mnemonic != "" {
				fmt.Fprintf(w, "Mnemonic: %s\n", result.Mnemonic)
			}
			if splitting {
				yellow.Fprintf(w, "\nShares (any %d of %d recover the key):\n", threshold, parts)
				for i, s := range result.Shares {
					fmt.Fprintf(w, "  %d: %s\n", i+1, s)
				}
			}
			red.Fprintln(w, "\nStore this key safely. Files encrypted with it cannot be recovered without it.")
			return nil
		},
	}

	cmd.Flags().IntVarP(&size, "size", "s", 32, "Key size in bytes: 16, 24 or 32")
	cmd.Flags().BoolVarP(&withMnemonic, "mnemonic", "m", false, "Also print the key as a BIP-39 mnemonic")
	cmd.Flags().IntVarP(&parts, "split", "n", 0, "Split the key into this many shares")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", 0, "Shares required to recover the key")

	return cmd
}

func NewKeyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Key backup utilities",
	}
	cmd.AddCommand(newKeyCombineCommand())
	return cmd
}

func newKeyCombineCommand() *cobra.Command {
	var withMnemonic bool

	cmd := &cobra.Command{
		Use:   "combine SHARE...",
		Short: "Recover a key from Shamir shares",
		Long: `Recover a key from hex shares printed by 'gfaes keygen --split'.

Fewer shares than the threshold yield a wrong key without any error; it
will only show up as a failed decryption.`,
		Example: `  gfaes key combine 3f9a...01 77c2...02 a0b1...03`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shares := make([][]byte, 0, len(args))
			for i, arg := range args {
				arg = strings.TrimSpace(arg)
				if err := validation.ValidateShare(arg); err != nil {
					return invalidInput("share %d: %w", i+1, err)
				}
				data, err := hex.DecodeString(arg)
				if err != nil {
					return invalidInput("share %d: %w", i+1, err)
				}
				shares = append(shares, data)
			}

			key, err := keys.Combine(shares)
			if err != nil {
				return asInput(err)
			}
			defer secure.Zero(key)

			result := keygenResult{Key: hex.EncodeToString(key), Bits: len(key) * 8}
			if withMnemonic {
				words, err := keys.ToMnemonic(key)
				if err != nil {
					return err
				}
				result.Mnemonic = words
			}

			if outputJSON, _ := cmd.Flags().GetBool("json"); outputJSON {
				return output.PrintJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			green.Fprintf(w, "Recovered %d-bit key from %d shares\n", result.Bits, len(shares))
			fmt.Fprintf(w, "Key: %s\n", result.Key)
			if result.Mnemonic != "" {
				fmt.Fprintf(w, "Mnemonic: %s\n", result.Mnemonic)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&withMnemonic, "mnemonic", "m", false, "Also print the key as a BIP-39 mnemonic")
	return cmd
}
