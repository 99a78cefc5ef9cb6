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

type traceStep struct {
	Round int    `json:"round"`
	Step  string `json:"step"`
	State string `json:"state"`
}

type blockResult struct {
	Input  string      `json:"input"`
	Output string      `json:"output"`
	Trace  []traceStep `json:"trace,omitempty"`
}

func NewCipherBlockCommand() *cobra.Command {
	var (
		ff       fieldFlags
		keyHex   string
		blockHex string
		inverse  bool
		trace    bool
	)

	cmd := &cobra.Command{
		Use:   "cipher-block",
		Short: "Run the block cipher on a single 16-byte block",
		Long: `Encrypt (or with --inverse decrypt) one 16-byte block without chaining
or padding. With --trace the state is printed after every transformation
of every round.`,
		Example: `  # FIPS-197 Appendix B
  gfaes cipher-block --key 2b7e151628aed2a6abf7158809cf4f3c \
    --block 3243f6a8885a308d313198a2e0370734 --trace`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validation.ValidateKeyHex(keyHex); err != nil {
				return asInput(err)
			}
			key, err := keys.ParseHex(keyHex)
			if err != nil {
				return asInput(err)
			}
			defer secure.Zero(key)

			in, err := validation.DecodeBlockHex(blockHex)
			if err != nil {
				return asInput(err)
			}

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

			c, err := newAES(key, p)
			if err != nil {
				return err
			}

			state, err := aes.StateFromBytes(in)
			if err != nil {
				return asInput(err)
			}

			var (
				steps  []traceStep
				states []aes.State
			)
			record := func(round int, step aes.Step, s aes.State) {
				states = append(states, s)
				steps = append(steps, traceStep{
					Round: round,
					Step:  string(step),
					State: output.FormatBytes(s.Bytes(), output.FormatHex),
				})
			}
			if !trace {
				record = nil
			}

			var out aes.State
			if inverse {
				out = c.TraceInvCipherBlock(state, record)
			} else {
				out = c.TraceCipherBlock(state, record)
			}

			result := blockResult{
				Input:  output.FormatBytes(in, output.FormatHex),
				Output: output.FormatBytes(out.Bytes(), output.FormatHex),
				Trace:  steps,
			}

			if outputJSON, _ := cmd.Flags().GetBool("json"); outputJSON {
				return output.PrintJSON(cmd.OutOrStdout(), result)
			}

			w := cmd.OutOrStdout()
			if trace {
				for i, s := range steps {
					cyan.Fprintf(w, "round %2d  %s\n", s.Round, s.Step)
					fmt.Fprintln(w, output.FormatMatrix(states[i], format))
				}
				fmt.Fprintln(w)
			}
			green.Fprintf(w, "Output: %s\n", output.FormatBytes(out.Bytes(), format))
			return nil
		},
	}

	cmd.Flags().StringVarP(&keyHex, "key", "k", "", "Key as hex (16, 24 or 32 bytes)")
	cmd.Flags().StringVarP(&blockHex, "block", "b", "", "Input block as 32 hex characters")
	cmd.Flags().BoolVar(&inverse, "inverse", false, "Run the inverse cipher")
	cmd.Flags().BoolVar(&trace, "trace", false, "Print the state after every transformation")
	cmd.Flags().StringVar(&ff.poly, "poly", "", "Irreducible polynomial (default from config, 0x11B)")
	cmd.Flags().StringVarP(&ff.format, "format", "f", "", "Display format: hex, bin or dec")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("block")

	return cmd
}
