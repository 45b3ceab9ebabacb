// Package varint reads the signed variable-length integers that prefix
// compressed entries.
//
// Each byte with the high bit set contributes its low 7 bits, least
// significant group first. The first byte with the high bit clear ends the
// number; its 7 bits are a signed value in [-64, 63].
package varint

import (
	"errors"
	"fmt"
	"io"
)

// MaxShift is the accumulated shift at which a number is rejected.
const MaxShift = 32

var (
	// ErrOverflow is returned when continuation bytes run past 32 bits.
	ErrOverflow = errors.New("varint: value overflows 32 bits")
	// ErrTruncated is returned when the input ends before the final byte.
	ErrTruncated = errors.New("varint: unexpected end of input")
)

// ReadSigned decodes one signed integer from r.
func ReadSigned(r io.ByteReader) (int32, error) {
	var (
		n     int32
		shift uint
	)
	for {
		b, err := r.ReadByte()
		if err == io.EOF {
			return 0, ErrTruncated
		} else if err != nil {
			return 0, fmt.Errorf("read varint: %w", err)
		}
		if b < 0x80 {
			// sign-extend bit 6
			n |= ((int32(b) ^ 0x40) - 0x40) << shift
			return n, nil
		}
		n |= int32(b&0x7f) << shift
		shift += 7
		if shift >= MaxShift {
			return 0, ErrOverflow
		}
	}
}
