package cli

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davincible/gfaes/pkg/crypto/aes"
	"github.com/Davincible/gfaes/pkg/crypto/cbc"
	"github.com/Davincible/gfaes/pkg/crypto/gf"
	"github.com/Davincible/gfaes/pkg/crypto/padding"
)

const testKey = "000102030405060708090a0b0c0d0e0f"

// run executes the command tree with an isolated config file.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand("test")
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))

	cfg := filepath.Join(t.TempDir(), "config.yaml")
	root.SetArgs(append([]string{"--config", cfg, "--no-color"}, args...))

	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestEncryptDecryptWithHexKey(t *testing.T) {
	data := []byte("the magic words are squeamish ossifrage\n")
	src := writeFile(t, "msg.txt", data)

	out, err := run(t, "", "encrypt", "-i", src, "-k", testKey)
	require.NoError(t, err)
	assert.Contains(t, out, "Encrypted to: "+src+".enc")

	enc, err := os.ReadFile(src + ".enc")
	require.NoError(t, err)
	assert.Len(t, enc, 16+48)

	out, err = run(t, "", "decrypt", "-i", src+".enc", "-k", testKey, "--workers", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "Decrypted to: "+src+".dec")

	got, err := os.ReadFile(src + ".dec")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEncryptInteroperatesWithStandardAES(t *testing.T) {
	data := bytes.Repeat([]byte("interop "), 10)
	src := writeFile(t, "plain", data)
	dst := filepath.Join(t.TempDir(), "cipher.bin")

	_, err := run(t, "", "encrypt", "-i", src, "-o", dst, "-k", testKey)
	require.NoError(t, err)

	enc, err := os.ReadFile(dst)
	require.NoError(t, err)

	block, err := aes.NewCipher(mustDecode(t, testKey))
	require.NoError(t, err)
	c, err := cbc.New(block)
	require.NoError(t, err)

	plain, err := c.Decrypt(enc)
	require.NoError(t, err)
	assert.Equal(t, data, plain)
}

func TestEncryptWithPassphrase(t *testing.T) {
	data := []byte("passphrase protected")
	src := writeFile(t, "pp.txt", data)

	_, err := run(t, "correct horse battery\n", "encrypt", "-i", src, "-p")
	require.NoError(t, err)

	_, err = run(t, "correct horse battery\n", "decrypt", "-i", src+".enc", "-p", "-o", src+".out")
	require.NoError(t, err)

	got, err := os.ReadFile(src + ".out")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = run(t, "short\n", "encrypt", "-i", src, "-p")
	require.Error(t, err)
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestEncryptWithNonDefaultPolynomial(t *testing.T) {
	data := []byte("a different field")
	src := writeFile(t, "poly.txt", data)

	_, err := run(t, "", "encrypt", "-i", src, "-k", testKey, "--poly", "0x11D")
	require.NoError(t, err)

	_, err = run(t, "", "decrypt", "-i", src+".enc", "-k", testKey, "--poly", "0x11D")
	require.NoError(t, err)

	got, err := os.ReadFile(src + ".dec")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestEncryptRemoveSource(t *testing.T) {
	src := writeFile(t, "gone.txt", []byte("shred me"))

	out, err := run(t, "", "encrypt", "-i", src, "-k", testKey, "--remove-source")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed source")
	assert.NoFileExists(t, src)
	assert.FileExists(t, src+".enc")
}

func TestEncryptRemoveSourceInPlace(t *testing.T) {
	data := []byte("only copy")
	src := writeFile(t, "inplace.txt", data)

	_, err := run(t, "", "encrypt", "-i", src, "-o", src, "-k", testKey, "--remove-source")
	require.Error(t, err)
	assert.Equal(t, ExitInput, ExitCode(err))

	got, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, data, got, "input must be left untouched")

	// Same file reached through a different spelling of the path.
	sep := string(filepath.Separator)
	alias := filepath.Dir(src) + sep + "." + sep + filepath.Base(src)
	_, err = run(t, "", "encrypt", "-i", src, "-o", alias, "-k", testKey, "--remove-source")
	require.Error(t, err)
	assert.FileExists(t, src)

	// In-place encryption without removal is still allowed.
	_, err = run(t, "", "encrypt", "-i", src, "-o", src, "-k", testKey)
	require.NoError(t, err)
	out, err := run(t, "", "decrypt", "-i", src, "-o", src+".plain", "-k", testKey)
	require.NoError(t, err, out)
	got, err = os.ReadFile(src + ".plain")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestDecryptFailures(t *testing.T) {
	malformed := writeFile(t, "bad.enc", make([]byte, 20))
	_, err := run(t, "", "decrypt", "-i", malformed, "-k", testKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, cbc.ErrMalformedCiphertext)
	assert.Equal(t, ExitDecrypt, ExitCode(err))

	// Block aligned plaintext, then flip the last padding byte to zero.
	src := writeFile(t, "aligned", make([]byte, 32))
	_, err = run(t, "", "encrypt", "-i", src, "-k", testKey)
	require.NoError(t, err)

	enc, err := os.ReadFile(src + ".enc")
	require.NoError(t, err)
	enc[len(enc)-17] ^= 0x10
	require.NoError(t, os.WriteFile(src+".enc", enc, 0600))

	_, err = run(t, "", "decrypt", "-i", src+".enc", "-k", testKey)
	require.Error(t, err)
	assert.ErrorIs(t, err, padding.ErrInvalidPadding)
	assert.Equal(t, ExitDecrypt, ExitCode(err))
	assert.NoFileExists(t, src+".dec")
}

func TestKeyFlagValidation(t *testing.T) {
	src := writeFile(t, "x", []byte("x"))

	tests := []struct {
		name string
		args []string
	}{
		{"No key", []string{"encrypt", "-i", src}},
		{"Two key sources", []string{"encrypt", "-i", src, "-k", testKey, "--mnemonic", "abandon"}},
		{"Short key", []string{"encrypt", "-i", src, "-k", "0011"}},
		{"Bad polynomial", []string{"encrypt", "-i", src, "-k", testKey, "--poly", "0x1B"}},
		{"Reducible polynomial", []string{"encrypt", "-i", src, "-k", testKey, "--poly", "0x100"}},
		{"Negative workers", []string{"decrypt", "-i", src, "-k", testKey, "--workers", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, "", tt.args...)
			assert.Error(t, err)
		})
	}

	_, err := run(t, "", "encrypt", "-i", src, "-k", testKey, "--poly", "0x100")
	assert.ErrorIs(t, err, gf.ErrNoGenerator)
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestKeygenMnemonicRoundTrip(t *testing.T) {
	out, err := run(t, "", "keygen", "--size", "16", "--mnemonic", "--json")
	require.NoError(t, err)

	var result keygenResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 128, result.Bits)
	assert.Len(t, result.Key, 32)
	assert.Len(t, strings.Fields(result.Mnemonic), 12)

	data := []byte("mnemonic keyed")
	src := writeFile(t, "m.txt", data)
	_, err = run(t, "", "encrypt", "-i", src, "--mnemonic", result.Mnemonic)
	require.NoError(t, err)
	_, err = run(t, "", "decrypt", "-i", src+".enc", "-k", result.Key)
	require.NoError(t, err)

	got, err := os.ReadFile(src + ".dec")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestKeygenSplitAndCombine(t *testing.T) {
	out, err := run(t, "", "keygen", "--split", "5", "--threshold", "3", "--json")
	require.NoError(t, err)

	var result keygenResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 256, result.Bits)
	require.Len(t, result.Shares, 5)

	args := append([]string{"key", "combine", "--json"}, result.Shares[1:4]...)
	out, err = run(t, "", args...)
	require.NoError(t, err)

	var combined keygenResult
	require.NoError(t, json.Unmarshal([]byte(out), &combined))
	assert.Equal(t, result.Key, combined.Key)

	_, err = run(t, "", "keygen", "--split", "2", "--threshold", "3")
	assert.Equal(t, ExitInput, ExitCode(err))

	_, err = run(t, "", "key", "combine", "zz", "yy")
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestKeygenText(t *testing.T) {
	out, err := run(t, "", "keygen", "--size", "24")
	require.NoError(t, err)
	assert.Contains(t, out, "Generated 192-bit key")
	assert.Contains(t, out, "Key: ")

	_, err = run(t, "", "keygen", "--size", "20")
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestFieldCommands(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"Generator", []string{"field"}, "Generator:  0x03"},
		{"Generator 0x11D", []string{"field", "--poly", "0x11D"}, "Generator:  0x02"},
		{"Generator decimal", []string{"field", "--format", "dec"}, "Polynomial: 283"},
		{"Mul", []string{"field", "mul", "57", "83"}, "0xc1"},
		{"Mul binary", []string{"field", "mul", "0x57", "0x13", "--format", "bin"}, "0b11111110"},
		{"Add", []string{"field", "add", "57", "83"}, "0xd4"},
		{"Div", []string{"field", "div", "c1", "83"}, "0x57"},
		{"Inv", []string{"field", "inv", "53"}, "0xca"},
		{"Xtime", []string{"field", "xtime", "57"}, "0xae"},
		{"Tables", []string{"field", "--tables"}, "0_ | 01 03 05 0f"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, "", tt.args...)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestFieldErrors(t *testing.T) {
	_, err := run(t, "", "field", "div", "57", "0")
	assert.Equal(t, ExitInput, ExitCode(err))

	_, err = run(t, "", "field", "inv", "0")
	assert.Equal(t, ExitInput, ExitCode(err))

	_, err = run(t, "", "field", "mul", "100", "2")
	assert.Equal(t, ExitInput, ExitCode(err))

	_, err = run(t, "", "field", "--format", "hexx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "hex"`)
}

func TestFieldJSON(t *testing.T) {
	out, err := run(t, "", "field", "--tables", "--json")
	require.NoError(t, err)

	var info fieldInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "0x03", info.Generator)
	require.Len(t, info.Exp, 255)
	assert.Equal(t, 1, info.Exp[0])
	assert.Equal(t, 3, info.Exp[1])
	assert.Equal(t, 1, info.Log[3])
}

func TestSboxCommand(t *testing.T) {
	out, err := run(t, "", "sbox", "--lookup", "53")
	require.NoError(t, err)
	assert.Equal(t, "0xed\n", out)

	out, err = run(t, "", "sbox", "--inverse", "--lookup", "ed")
	require.NoError(t, err)
	assert.Equal(t, "0x53\n", out)

	out, err = run(t, "", "sbox")
	require.NoError(t, err)
	assert.Contains(t, out, "0_ | 63 7c 77 7b")

	out, err = run(t, "", "sbox", "--json")
	require.NoError(t, err)
	var table []int
	require.NoError(t, json.Unmarshal([]byte(out), &table))
	require.Len(t, table, 256)
	assert.Equal(t, 0x63, table[0])
}

func TestScheduleCommand(t *testing.T) {
	out, err := run(t, "", "schedule", "--key", "2b7e151628aed2a6abf7158809cf4f3c", "--json")
	require.NoError(t, err)

	var roundKeys []string
	require.NoError(t, json.Unmarshal([]byte(out), &roundKeys))
	require.Len(t, roundKeys, 11)
	assert.Equal(t, "2b7e151628aed2a6abf7158809cf4f3c", roundKeys[0])
	assert.Equal(t, "d014f9a8c9ee2589e13f0cc8b6630ca6", roundKeys[10])

	out, err = run(t, "", "schedule", "--key", "2b7e151628aed2a6abf7158809cf4f3c")
	require.NoError(t, err)
	assert.Contains(t, out, "Round 10: d014f9a8c9ee2589e13f0cc8b6630ca6")
	assert.Contains(t, out, "2b 28 ab 09")

	_, err = run(t, "", "schedule", "--key", "00")
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestCipherBlockCommand(t *testing.T) {
	args := []string{
		"cipher-block",
		"--key", "2b7e151628aed2a6abf7158809cf4f3c",
		"--block", "3243f6a8885a308d313198a2e0370734",
	}

	out, err := run(t, "", args...)
	require.NoError(t, err)
	assert.Contains(t, out, "Output: 3925841d02dc09fbdc118597196a0b32")

	out, err = run(t, "", append(args, "--trace", "--json")...)
	require.NoError(t, err)

	var result blockResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "3925841d02dc09fbdc118597196a0b32", result.Output)
	require.Len(t, result.Trace, 1+9*4+3)
	assert.Equal(t, "193de3bea0f4e22b9ac68d2ae9f84808", result.Trace[0].State)
	assert.Equal(t, string(aes.StepSubBytes), result.Trace[1].Step)

	out, err = run(t, "",
		"cipher-block", "--inverse",
		"--key", "2b7e151628aed2a6abf7158809cf4f3c",
		"--block", "3925841d02dc09fbdc118597196a0b32")
	require.NoError(t, err)
	assert.Contains(t, out, "Output: 3243f6a8885a308d313198a2e0370734")

	out, err = run(t, "", append(args, "--trace")...)
	require.NoError(t, err)
	assert.Contains(t, out, "round  0  AddRoundKey")
	assert.Contains(t, out, "19 a0 9a e9")

	_, err = run(t, "", "cipher-block", "--key", testKey, "--block", "00")
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestSelftestCommand(t *testing.T) {
	out, err := run(t, "", "selftest")
	require.NoError(t, err)
	assert.NotContains(t, out, "FAIL")
	assert.Contains(t, out, "PASS  FIPS-197 AES-256")
	assert.Contains(t, out, "PASS  SP 800-38A CBC-AES128")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gfaes", "config.yaml")

	root := func(args ...string) (string, error) {
		cmd := NewRootCommand("test")
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SetArgs(append([]string{"--config", path, "--no-color"}, args...))
		err := cmd.Execute()
		return out.String(), err
	}

	out, err := root("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote default configuration")
	assert.FileExists(t, path)

	_, err = root("config", "init")
	assert.Equal(t, ExitInput, ExitCode(err))

	_, err = root("config", "init", "--force")
	assert.NoError(t, err)

	out, err = root("config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, `polynomial: "0x11B"`)
	assert.Contains(t, out, "kdf_iterations: 100000")

	// Config values drive the commands.
	require.NoError(t, os.WriteFile(path, []byte("ui:\n  format: dec\n"), 0600))
	out, err = root("field", "mul", "57", "83")
	require.NoError(t, err)
	assert.Equal(t, "193\n", out)

	require.NoError(t, os.WriteFile(path, []byte("cipher:\n  key_size: 7\n"), 0600))
	_, err = root("field")
	assert.Equal(t, ExitInput, ExitCode(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"Nil", nil, ExitSuccess},
		{"Plain", errors.New("boom"), ExitGeneral},
		{"Input", invalidInput("bad flag"), ExitInput},
		{"Key size", aes.KeySizeError(7), ExitInput},
		{"Polynomial", fmt.Errorf("wrap: %w", gf.ErrInvalidPolynomial), ExitInput},
		{"Padding", fmt.Errorf("failed to decrypt: %w", padding.ErrInvalidPadding), ExitDecrypt},
		{"Malformed", cbc.ErrMalformedCiphertext, ExitDecrypt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestHint(t *testing.T) {
	assert.Contains(t, Hint(padding.ErrInvalidPadding), "wrong key")
	assert.Contains(t, Hint(cbc.ErrMalformedCiphertext), "16-byte blocks")
	assert.Empty(t, Hint(errors.New("other")))
}

func mustDecode(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}
