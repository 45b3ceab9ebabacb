// Package armor decodes the printable ASCII armor used for file bodies in
// AsciiCoder.DecodeFiles archives.
//
// Every alphabet byte in the range '0'..'o' carries 6 bits (byte - '0'),
// packed least significant bit first. A unit ends with one sentinel that
// states how many bits are left over in the buffer:
//
//	'#'  0 bits
//	'%'  2 bits
//	'$'  4 bits
//
// Bytes <= 0x20 are formatting and are skipped.
package armor

import (
	"errors"
	"fmt"
	"io"
)

// Base is the first byte of the 64 symbol alphabet.
const Base = '0'

// Sentinels closing an armored unit.
const (
	SentinelZero = '#' // 0 leftover bits
	SentinelTwo  = '%' // 2 leftover bits
	SentinelFour = '$' // 4 leftover bits
)

var (
	// ErrAlphabet is returned for a byte that is neither in the alphabet nor a sentinel.
	ErrAlphabet = errors.New("armor: invalid symbol")
	// ErrTerminatorMismatch is returned when a sentinel disagrees with the leftover bit count.
	ErrTerminatorMismatch = errors.New("armor: terminator does not match leftover bits")
	// ErrTruncated is returned when the input ends before a sentinel.
	ErrTruncated = errors.New("armor: unexpected end of input")
)

// SymbolError describes the byte that ended a unit unsuccessfully.
type SymbolError struct {
	Symbol   byte
	Leftover int // bits left in the buffer when Symbol was read
	Err      error
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("%v (symbol %q, %d leftover bits)", e.Err, e.Symbol, e.Leftover)
}

func (e *SymbolError) Unwrap() error {
	return e.Err
}

// LeftoverBits reports how many leftover bits the sentinel s asserts.
// ok is false if s is not a sentinel.
func LeftoverBits(s byte) (bits int, ok bool) {
	switch s {
	case SentinelZero:
		return 0, true
	case SentinelTwo:
		return 2, true
	case SentinelFour:
		return 4, true
	}
	return 0, false
}

// InAlphabet reports whether c is one of the 64 armor symbols.
func InAlphabet(c byte) bool {
	return c >= Base && c < Base+64
}

// Decode reads one armored unit from r and returns the raw bytes it encodes.
// On success r is positioned just after the sentinel.
func Decode(r io.ByteReader) ([]byte, error) {
	var (
		out  []byte
		buf  uint32
		bits int
	)
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return nil, ErrTruncated
		} else if err != nil {
			return nil, fmt.Errorf("read armor: %w", err)
		}
		if c <= ' ' {
			continue
		}
		if !InAlphabet(c) {
			want, ok := LeftoverBits(c)
			if !ok {
				return nil, &SymbolError{Symbol: c, Leftover: bits, Err: ErrAlphabet}
			}
			if want != bits {
				return nil, &SymbolError{Symbol: c, Leftover: bits, Err: ErrTerminatorMismatch}
			}
			return out, nil
		}

		buf |= uint32(c-Base) << bits
		bits += 6
		if bits >= 8 {
			out = append(out, byte(buf))
			buf >>= 8
			bits -= 8
		}
	}
}
