package cli

import (
	"errors"
	"fmt"

	"github.com/Davincible/gfaes/pkg/crypto/aes"
	"github.com/Davincible/gfaes/pkg/crypto/cbc"
	"github.com/Davincible/gfaes/pkg/crypto/gf"
	"github.com/Davincible/gfaes/pkg/crypto/padding"
)

// Process exit codes.
const (
	ExitSuccess = 0 // Successful execution
	ExitGeneral = 1 // General/unknown error
	ExitInput   = 2 // Invalid input or configuration
	ExitDecrypt = 3 // Ciphertext malformed, wrong key or corrupted file
)

// inputError marks an error caused by bad flags, arguments or config.
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }
func (e *inputError) Unwrap() error { return e.err }

func invalidInput(format string, args ...any) error {
	return &inputError{err: fmt.Errorf(format, args...)}
}

func asInput(err error) error {
	if err == nil {
		return nil
	}
	return &inputError{err: err}
}

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, padding.ErrInvalidPadding) || errors.Is(err, cbc.ErrMalformedCiphertext) {
		return ExitDecrypt
	}

	var ie *inputError
	if errors.As(err, &ie) ||
		errors.Is(err, aes.ErrInvalidKeySize) ||
		errors.Is(err, gf.ErrInvalidPolynomial) ||
		errors.Is(err, gf.ErrNoGenerator) {
		return ExitInput
	}

	return ExitGeneral
}

// Hint returns advice for the user about err, or "".
func Hint(err error) string {
	switch {
	case errors.Is(err, padding.ErrInvalidPadding):
		return "wrong key, wrong polynomial or a corrupted file"
	case errors.Is(err, cbc.ErrMalformedCiphertext):
		return "the input is not a gfaes ciphertext (expected IV plus whole 16-byte blocks)"
	case errors.Is(err, gf.ErrNoGenerator):
		return "the polynomial must be irreducible, try 0x11B"
	}
	return ""
}
