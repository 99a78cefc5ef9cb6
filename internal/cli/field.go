package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Davincible/gfaes/internal/output"
	"github.com/Davincible/gfaes/internal/validation"
	"github.com/Davincible/gfaes/pkg/crypto/gf"
)

type fieldInfo struct {
	Polynomial string `json:"polynomial"`
	Generator  string `json:"generator"`
	Exp        []int  `json:"exp,omitempty"`
	Log        []int  `json:"log,omitempty"`
}

// fieldFlags are shared by the field command and its subcommands.
type fieldFlags struct {
	poly   string
	format string
}

func (ff *fieldFlags) load(cmd *cobra.Command) (*gf.Field, output.Format, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, "", err
	}
	p, err := resolvePolynomial(ff.poly, cfg)
	if err != nil {
		return nil, "", err
	}
	format, err := resolveFormat(ff.format, cfg)
	if err != nil {
		return nil, "", err
	}
	f, err := gf.New(p)
	if err != nil {
		return nil, "", err
	}
	return f, format, nil
}

func NewFieldCommand() *cobra.Command {
	var (
		ff     fieldFlags
		tables bool
	)

	cmd := &cobra.Command{
		Use:   "field",
		Short: "Inspect GF(2^8) under a reduction polynomial",
		Long: `Show the generator the field's exp/log tables are built from and,
optionally, the tables themselves. Subcommands evaluate single field
operations. Elements are read as hex (57, 0x57), binary (0b1010111) or
decimal (d:87).`,
		Example: `  # Generator of the AES field
  gfaes field

  # Exp and log tables of another field, in decimal
  gfaes field --poly 0x11D --tables --format dec

  # 0x57 * 0x83 in the AES field
  gfaes field mul 57 83`,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, format, err := ff.load(cmd)
			if err != nil {
				return err
			}

			if outputJSON, _ := cmd.Flags().GetBool("json"); outputJSON {
				info := fieldInfo{
					Polynomial: output.FormatPolynomial(f.Polynomial(), format),
					Generator:  output.FormatByte(f.Generator(), format),
				}
				if tables {
					info.Exp = make([]int, 255)
					for i := range info.Exp {
						info.Exp[i] = int(f.Exp(i))
					}
					info.Log = make([]int, 256)
					for i := 1; i < 256; i++ {
						info.Log[i] = f.Log(byte(i))
					}
				}
				return output.PrintJSON(cmd.OutOrStdout(), info)
			}

			w := cmd.OutOrStdout()
			cyan.Fprintf(w, "Polynomial: %s\n", output.FormatPolynomial(f.Polynomial(), format))
			cyan.Fprintf(w, "Generator:  %s\n", output.FormatByte(f.Generator(), format))

			if tables {
				var exp, log [256]byte
				for i := range exp {
					exp[i] = f.Exp(i)
				}
				for i := 1; i < 256; i++ {
					log[i] = byte(f.Log(byte(i)))
				}
				fmt.Fprintln(w, "\nExp (generator^i):")
				fmt.Fprintln(w, output.FormatTable(exp, format))
				fmt.Fprintln(w, "\nLog (log[0] is undefined):")
				fmt.Fprintln(w, output.FormatTable(log, format))
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&ff.poly, "poly", "", "Irreducible polynomial (default from config, 0x11B)")
	cmd.PersistentFlags().StringVarP(&ff.format, "format", "f", "", "Display format: hex, bin or dec")
	cmd.Flags().BoolVar(&tables, "tables", false, "Print the exp and log tables")

	cmd.AddCommand(
		newFieldOpCommand(&ff, "add", "a + b (XOR)", 2, func(f *gf.Field, x []byte) (byte, error) {
			return f.Add(x[0], x[1]), nil
		}),
		newFieldOpCommand(&ff, "mul", "a * b", 2, func(f *gf.Field, x []byte) (byte, error) {
			return f.Mul(x[0], x[1]), nil
		}),
		newFieldOpCommand(&ff, "div", "a / b", 2, func(f *gf.Field, x []byte) (byte, error) {
			if x[1] == 0 {
				return 0, invalidInput("division by zero")
			}
			return f.Div(x[0], x[1]), nil
		}),
		newFieldOpCommand(&ff, "inv", "multiplicative inverse of a", 1, func(f *gf.Field, x []byte) (byte, error) {
			if x[0] == 0 {
				return 0, invalidInput("zero has no inverse")
			}
			return f.Inverse(x[0]), nil
		}),
		newFieldOpCommand(&ff, "xtime", "a * x", 1, func(f *gf.Field, x []byte) (byte, error) {
			return f.MulX(x[0]), nil
		}),
	)

	return cmd
}

func newFieldOpCommand(ff *fieldFlags, name, short string, arity int, op func(*gf.Field, []byte) (byte, error)) *cobra.Command {
	use := name + " A"
	if arity == 2 {
		use += " B"
	}

	return &cobra.Command{
		Use:   use,
		Short: "Compute " + short,
		Args:  cobra.ExactArgs(arity),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, format, err := ff.load(cmd)
			if err != nil {
				return err
			}

			operands := make([]byte, arity)
			for i, arg := range args {
				b, err := validation.ParseByte(arg)
				if err != nil {
					return asInput(err)
				}
				operands[i] = b
			}

			result, err := op(f, operands)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), output.FormatByte(result, format))
			return nil
		},
	}
}
