package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Davincible/gfaes/internal/output"
	"github.com/Davincible/gfaes/internal/validation"
	"github.com/Davincible/gfaes/pkg/crypto/sbox"
)

func NewSboxCommand() *cobra.Command {
	var (
		ff      fieldFlags
		inverse bool
		lookup  string
	)

	cmd := &cobra.Command{
		Use:   "sbox",
		Short: "Print the S-box built from a field",
		Long: `Print the substitution box of the field: each byte is replaced by its
multiplicative inverse and then passed through the AES affine map. With the
default polynomial this is the FIPS-197 S-box.`,
		Example: `  gfaes sbox
  gfaes sbox --inverse
  gfaes sbox --poly 0x11D --lookup 53`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, format, err := ff.load(cmd)
			if err != nil {
				return err
			}
			box := sbox.ForField(f)

			table := box.Forward()
			if inverse {
				table = box.Inverse()
			}

			if lookup != "" {
				b, err := validation.ParseByte(lookup)
				if err != nil {
					return asInput(err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), output.FormatByte(table[b], format))
				return nil
			}

			if outputJSON, _ := cmd.Flags().GetBool("json"); outputJSON {
				values := make([]int, len(table))
				for i, v := range table {
					values[i] = int(v)
				}
				return output.PrintJSON(cmd.OutOrStdout(), values)
			}

			name := "S-box"
			if inverse {
				name = "Inverse S-box"
			}
			cyan.Fprintf(cmd.OutOrStdout(), "%s for %s:\n", name, output.FormatPolynomial(f.Polynomial(), output.FormatHex))
			fmt.Fprintln(cmd.OutOrStdout(), output.FormatTable(table, format))
			return nil
		},
	}

	cmd.Flags().StringVar(&ff.poly, "poly", "", "Irreducible polynomial (default from config, 0x11B)")
	cmd.Flags().StringVarP(&ff.format, "format", "f", "", "Display format: hex, bin or dec")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "Print the inverse S-box")
	cmd.Flags().StringVar(&lookup, "lookup", "", "Print only the entry for this byte")

	return cmd
}
