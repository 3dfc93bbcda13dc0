/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: fragment.go
Description: Decoded data fragments and their common numeric views. A fragment holds the
bits recovered between two framing boundaries, stored MSB first, and can be rendered as
hex, decimal or binary in either bit order regardless of its width.
*/

package inference

import (
	"fmt"
	"math/big"
	"strings"
)

// Fragment is the run of data bits between two framing boundaries
type Fragment struct {
	Bits     string   `json:"bits" yaml:"bits"`   // '0'/'1', MSB first as stored
	Start    int      `json:"start" yaml:"start"` // Position of the first data space, or of the boundary when empty
	End      int      `json:"end" yaml:"end"`     // Position of the closing boundary
	Boundary Boundary `json:"boundary" yaml:"boundary"`
}

// Len returns the number of bits in the fragment
func (f Fragment) Len() int {
	return len(f.Bits)
}

// Reversed returns the bits in LSB-first order
func (f Fragment) Reversed() string {
	b := []byte(f.Bits)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}

// ValueMSB returns the fragment read MSB first
func (f Fragment) ValueMSB() *big.Int {
	return parseBits(f.Bits)
}

// ValueLSB returns the fragment read LSB first
func (f Fragment) ValueLSB() *big.Int {
	return parseBits(f.Reversed())
}

// HexMSB renders the MSB-first value as 0x-prefixed upper-case hex
func (f Fragment) HexMSB() string {
	return formatHex(f.ValueMSB(), f.Len())
}

// HexLSB renders the LSB-first value as 0x-prefixed upper-case hex
func (f Fragment) HexLSB() string {
	return formatHex(f.ValueLSB(), f.Len())
}

// DecMSB renders the MSB-first value in decimal
func (f Fragment) DecMSB() string {
	return f.ValueMSB().String()
}

// DecLSB renders the LSB-first value in decimal
func (f Fragment) DecLSB() string {
	return f.ValueLSB().String()
}

// Bytes splits the fragment into MSB-first bytes; a trailing partial byte is
// read as its own, shorter, binary number
func (f Fragment) Bytes() []byte {
	return BitsToBytes(f.Bits)
}

// BitsToBytes splits a bit string into 8-bit groups, MSB first
func BitsToBytes(bits string) []byte {
	out := make([]byte, 0, (len(bits)+7)/8)
	for i := 0; i < len(bits); i += 8 {
		end := i + 8
		if end > len(bits) {
			end = len(bits)
		}
		out = append(out, byte(parseBits(bits[i:end]).Uint64()))
	}
	return out
}

// parseBits converts a '0'/'1' string to an integer; the empty string is zero
func parseBits(bits string) *big.Int {
	n := new(big.Int)
	if bits == "" {
		return n
	}
	n.SetString(bits, 2)
	return n
}

// formatHex pads to one digit per whole nibble of the bit width
func formatHex(n *big.Int, bits int) string {
	digits := strings.ToUpper(n.Text(16))
	if pad := bits/4 - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return fmt.Sprintf("0x%s", digits)
}
