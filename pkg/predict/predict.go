// Package predict implements the adaptive context-hash decompressor used by
// compressed AsciiCoder.DecodeFiles archives.
//
// The payload is a signed varint length N followed by a bit-stream read
// least significant bit first. For every output byte one control bit is
// read: 0 repeats the byte last seen after the current context, 1 is
// followed by an 8 bit literal that also becomes the new prediction for
// that context. The context is a rolling hash of the bytes emitted so far.
package predict

import (
	"errors"
	"fmt"
	"io"

	"asciidecoder/pkg/varint"
)

// TableSize is the number of prediction slots; the context hash is kept modulo TableSize.
const TableSize = 16384

var (
	// ErrTruncated is returned when the bit-stream ends before N bytes are produced.
	ErrTruncated = errors.New("predict: unexpected end of bit-stream")
	// ErrNegativeLength is returned when the length prefix is negative.
	ErrNegativeLength = errors.New("predict: negative length")
)

// state is the per-call model. It is never shared between calls.
type state struct {
	table [TableSize]byte
	hash  int
}

// next decodes one symbol and advances the context.
func (s *state) next(br *bitReader) (byte, error) {
	miss, err := br.readBit()
	if err != nil {
		return 0, err
	}
	b := s.table[s.hash]
	if miss != 0 {
		if b, err = br.readByte(); err != nil {
			return 0, err
		}
		s.table[s.hash] = b
	}
	s.hash = (16*s.hash + int(b)) % TableSize
	return b, nil
}

// Decompress reads the length prefix and then exactly that many symbols from r.
func Decompress(r io.ByteReader) ([]byte, error) {
	n, err := varint.ReadSigned(r)
	if err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLength, n)
	}
	return DecompressN(r, int(n))
}

// DecompressN decodes exactly n bytes from the bit-stream in r.
func DecompressN(r io.ByteReader, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeLength, n)
	}
	s := new(state)
	br := &bitReader{r: r}
	// n comes from the input; don't trust it for the allocation
	out := make([]byte, 0, min(n, 1<<16))
	for len(out) < n {
		b, err := s.next(br)
		if err != nil {
			return nil, fmt.Errorf("symbol %d of %d: %w", len(out), n, err)
		}
		out = append(out, b)
	}
	return out, nil
}
