package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Davincible/gfaes/internal/output"
	"github.com/Davincible/gfaes/internal/validation"
	"github.com/Davincible/gfaes/pkg/crypto/aes"
	"github.com/Davincible/gfaes/pkg/crypto/keys"
	"github.com/Davincible/gfaes/pkg/secure"
)

func NewScheduleCommand() *cobra.Command {
	var (
		ff     fieldFlags
		keyHex string
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the expanded key schedule",
		Long: `Expand a key into its round keys and print them, one 4x4 matrix per
round. Each matrix is shown row by row, so the words of the schedule are
its columns.`,
		Example: `  gfaes schedule --key 2b7e151628aed2a6abf7158809cf4f3c`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateKeyHex(keyHex); err != nil {
				return asInput(err)
			}
			key, err := keys.ParseHex(keyHex)
			if err != nil {
				return asInput(err)
			}
			defer secure.Zero(key)

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			p, err := resolvePolynomial(ff.poly, cfg)
			if err != nil {
				return err
			}
			format, err := resolveFormat(ff.format, cfg)
			if err != nil {
				return err
			}

			engine, err := aes.EngineFor(p)
			if err != nil {
				return err
			}
			roundKeys, err := aes.ExpandKey(key, engine)
			if err != nil {
				return asInput(err)
			}

			if outputJSON, _ := cmd.Flags().GetBool("json"); outputJSON {
				hexKeys := make([]string, len(roundKeys))
				for i, rk := range roundKeys {
					hexKeys[i] = output.FormatBytes(rk.Bytes(), output.FormatHex)
				}
				return output.PrintJSON(cmd.OutOrStdout(), hexKeys)
			}

			w := cmd.OutOrStdout()
			for i, rk := range roundKeys {
				cyan.Fprintf(w, "Round %d: %s\n", i, output.FormatBytes(rk.Bytes(), output.FormatHex))
				fmt.Fprintln(w, output.FormatMatrix(rk, format))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyHex, "key", "k", "", "Key as hex (16, 24 or 32 bytes)")
	cmd.Flags().StringVar(&ff.poly, "poly", "", "Irreducible polynomial (default from config, 0x11B)")
	cmd.Flags().StringVarP(&ff.format, "format", "f", "", "Display format: hex, bin or dec")
	_ = cmd.MarkFlagRequired("key")

	return cmd
}
