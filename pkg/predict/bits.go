package predict

import (
	"fmt"
	"io"
)

// bitReader is a single LSB-first cursor over r. Control bits and literal
// bits are read from the same cursor.
type bitReader struct {
	r    io.ByteReader
	buf  uint32
	bits uint
}

func (br *bitReader) fill() error {
	b, err := br.r.ReadByte()
	if err == io.EOF {
		return ErrTruncated
	} else if err != nil {
		return fmt.Errorf("read bit-stream: %w", err)
	}
	br.buf |= uint32(b) << br.bits
	br.bits += 8
	return nil
}

func (br *bitReader) readBit() (uint32, error) {
	if br.bits == 0 {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	bit := br.buf & 1
	br.buf >>= 1
	br.bits--
	return bit, nil
}

func (br *bitReader) readByte() (byte, error) {
	// at most 7 bits are buffered here, so one more input byte is enough
	if br.bits < 8 {
		if err := br.fill(); err != nil {
			return 0, err
		}
	}
	b := byte(br.buf)
	br.buf >>= 8
	br.bits -= 8
	return b, nil
}
