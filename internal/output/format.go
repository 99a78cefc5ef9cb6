// Package output renders field elements, byte strings and matrices for the
// inspection commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format is the radix bytes are shown in.
type Format string

const (
	FormatHex Format = "hex"
	FormatBin Format = "bin"
	FormatDec Format = "dec"
)

// Formats lists the supported display formats.
var Formats = []Format{FormatHex, FormatBin, FormatDec}

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case FormatHex, FormatBin, FormatDec:
		return true
	}
	return false
}

// FormatByte renders a single byte: 0x1b, 0b00011011 or 27.
func FormatByte(b byte, f Format) string {
	switch f {
	case FormatBin:
		return fmt.Sprintf("0b%08b", b)
	case FormatDec:
		return strconv.Itoa(int(b))
	default:
		return fmt.Sprintf("0x%02x", b)
	}
}

// FormatPolynomial renders a 9-bit reduction polynomial.
func FormatPolynomial(p uint16, f Format) string {
	switch f {
	case FormatBin:
		return fmt.Sprintf("0b%09b", p)
	case FormatDec:
		return strconv.Itoa(int(p))
	default:
		return fmt.Sprintf("0x%03X", p)
	}
}

// FormatBytes renders a byte string. Hex output is a contiguous lowercase
// string, the other formats are space separated.
func FormatBytes(data []byte, f Format) string {
	if f == FormatHex {
		var sb strings.Builder
		for _, b := range data {
			fmt.Fprintf(&sb, "%02x", b)
		}
		return sb.String()
	}

	parts := make([]string, len(data))
	for i, b := range data {
		parts[i] = FormatByte(b, f)
	}
	return strings.Join(parts, " ")
}

// FormatMatrix renders a 4x4 state one row per line with aligned columns.
func FormatMatrix(m [4][4]byte, f Format) string {
	var sb strings.Builder
	for r, row := range m {
		cells := make([]string, len(row))
		for c, b := range row {
			cells[c] = cell(b, f)
		}
		sb.WriteString(strings.Join(cells, " "))
		if r < len(m)-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatTable renders a 256-entry lookup table as 16 rows of 16, with the
// high nibble labelling each row.
func FormatTable(table [256]byte, f Format) string {
	var sb strings.Builder
	for hi := 0; hi < 16; hi++ {
		fmt.Fprintf(&sb, "%x_ |", hi)
		for lo := 0; lo < 16; lo++ {
			sb.WriteByte(' ')
			sb.WriteString(cell(table[hi<<4|lo], f))
		}
		if hi < 15 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// cell renders a byte padded to a fixed width, without prefixes.
func cell(b byte, f Format) string {
	switch f {
	case FormatBin:
		return fmt.Sprintf("%08b", b)
	case FormatDec:
		return fmt.Sprintf("%3d", b)
	default:
		return fmt.Sprintf("%02x", b)
	}
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
