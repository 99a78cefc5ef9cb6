package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Davincible/gfaes/internal/output"
	"github.com/Davincible/gfaes/internal/validation"
	"github.com/Davincible/gfaes/pkg/config"
	"github.com/Davincible/gfaes/pkg/crypto/aes"
	"github.com/Davincible/gfaes/pkg/crypto/keys"
	"github.com/Davincible/gfaes/pkg/secure"
)

var (
	green  = color.New(color.FgGreen, color.Bold)
	yellow = color.New(color.FgYellow, color.Bold)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// loadConfig reads the file named by --config, or the default location.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cm, err := config.NewConfigManager(path)
	if err != nil {
		return nil, asInput(err)
	}

	cfg := cm.GetConfig()
	if !cfg.UI.UseColor {
		color.NoColor = true
	}
	return cfg, nil
}

// resolvePolynomial prefers the --poly flag over the configured polynomial.
func resolvePolynomial(flag string, cfg *config.Config) (uint16, error) {
	if flag == "" {
		flag = cfg.Cipher.Polynomial
	}
	poly, err := config.ParsePolynomial(flag)
	if err != nil {
		return 0, asInput(err)
	}
	return poly, nil
}

// resolveFormat prefers the --format flag over the configured format.
func resolveFormat(flag string, cfg *config.Config) (output.Format, error) {
	if flag == "" {
		flag = cfg.UI.Format
	}
	f, err := validation.ParseFormat(flag)
	if err != nil {
		return "", asInput(err)
	}
	return f, nil
}

// keySource holds the mutually exclusive ways a command can be given a key.
type keySource struct {
	hex        string
	passphrase bool
	mnemonic   string
}

func (k *keySource) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&k.hex, "key", "k", "", "Key as hex (16, 24 or 32 bytes)")
	cmd.Flags().BoolVarP(&k.passphrase, "passphrase", "p", false, "Derive the key from a passphrase (prompted)")
	cmd.Flags().StringVar(&k.mnemonic, "mnemonic", "", "Key as a BIP-39 mnemonic")
	cmd.MarkFlagsMutuallyExclusive("key", "passphrase", "mnemonic")
	cmd.MarkFlagsOneRequired("key", "passphrase", "mnemonic")
}

// resolve produces the key bytes. The caller owns the returned KeyBytes and
// must Destroy it.
func (k *keySource) resolve(cmd *cobra.Command, cfg *config.Config, confirm bool) (*secure.KeyBytes, error) {
	var (
		raw []byte
		err error
	)

	switch {
	case k.hex != "":
		if err := validation.ValidateKeyHex(k.hex); err != nil {
			return nil, asInput(err)
		}
		raw, err = keys.ParseHex(k.hex)
	case k.mnemonic != "":
		if err := validation.ValidateMnemonic(k.mnemonic); err != nil {
			return nil, asInput(err)
		}
		raw, err = keys.FromMnemonic(k.mnemonic)
	case k.passphrase:
		raw, err = k.fromPassphrase(cmd, cfg, confirm)
	default:
		return nil, invalidInput("one of --key, --passphrase or --mnemonic is required")
	}
	if err != nil {
		return nil, asInput(err)
	}

	defer secure.Zero(raw)
	return secure.FromBytes(raw), nil
}

func (k *keySource) fromPassphrase(cmd *cobra.Command, cfg *config.Config, confirm bool) ([]byte, error) {
	pass, err := readPassphrase(cmd, "Enter passphrase: ")
	if err != nil {
		return nil, fmt.Errorf("failed to read passphrase: %w", err)
	}
	if err := validation.ValidatePassphrase(pass, cfg.Security.MinPassphraseLength); err != nil {
		return nil, err
	}

	if confirm && cmd.InOrStdin() == os.Stdin && isTerminal() {
		again, err := readPassphrase(cmd, "Confirm passphrase: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read passphrase: %w", err)
		}
		if again != pass {
			return nil, fmt.Errorf("passphrases do not match")
		}
	}

	passBytes := []byte(pass)
	defer secure.Zero(passBytes)
	return keys.FromPassphrase(passBytes, cfg.Cipher.KeySize, cfg.Security.KDFIterations)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// readPassphrase reads a passphrase from the terminal without echo, or a
// single line from the command's input when it is not a terminal.
func readPassphrase(cmd *cobra.Command, prompt string) (string, error) {
	if cmd.InOrStdin() == os.Stdin && isTerminal() {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		passBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(passBytes), nil
	}

	// Fallback for non-terminal
	reader := bufio.NewReader(cmd.InOrStdin())
	pass, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || pass == "") {
		return "", err
	}
	return strings.TrimRight(pass, "\r\n"), nil
}

func newAES(key []byte, poly uint16) (*aes.Cipher, error) {
	c, err := aes.NewCipher(key, aes.WithPolynomial(poly))
	if err != nil {
		return nil, asInput(err)
	}
	return c, nil
}
