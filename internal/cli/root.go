package cli

import (
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCommand assembles the gfaes command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gfaes",
		Short: "AES over a configurable GF(2^8), with CBC file encryption",
		Long: `gfaes implements AES (FIPS-197) from first principles over GF(2^8) with a
selectable irreducible polynomial, and encrypts files in CBC mode with
PKCS#7 padding.

With the default polynomial 0x11B the cipher is standard AES and its output
interoperates with any other AES-CBC implementation. Other polynomials give
a different, non-standard cipher; the same polynomial is then needed to
decrypt.

Features:
- Encrypt and decrypt files with 128, 192 or 256-bit keys
- Keys from hex, passphrase (PBKDF2) or BIP-39 mnemonic
- Shamir backup shares for keys
- Inspection of the field, S-box, key schedule and single rounds`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		NewEncryptCommand(),
		NewDecryptCommand(),
		NewKeygenCommand(),
		NewKeyCommand(),
		NewFieldCommand(),
		NewSboxCommand(),
		NewScheduleCommand(),
		NewCipherBlockCommand(),
		NewSelftestCommand(),
		NewConfigCommand(),
	)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (default $GFAES_CONFIG or ~/.config/gfaes/config.yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	return rootCmd
}
