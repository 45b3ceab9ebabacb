// Package agcp reads and writes AGCP containers, a compressed multi-file
// archive used to repack entries recovered from ASCII archives.
//
// Layout (big-endian):
//
//	magic      "AGCP"
//	version    uint8
//	method     uint8
//	rootLen    uint16, root name
//	numEntries uint32
//	per entry: pathLen uint16, path, originalSize uint64,
//	           compressedSize uint64, compressed body
package agcp

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Constants for archive format
const (
	Magic   = "AGCP" // Magic number to identify the archive
	Version = 2      // Archive format version
)

// Method is the codec used for entry bodies.
type Method byte

const (
	MethodLZ4  Method = 0
	MethodZstd Method = 1
)

var (
	// ErrUnknownMethod is returned for a codec byte or name this package does not know.
	ErrUnknownMethod = errors.New("unknown compression method")
	// ErrCorrupt is returned when entry sizes do not match the archive contents.
	ErrCorrupt = errors.New("corrupt archive")
)

func (m Method) String() string {
	switch m {
	case MethodLZ4:
		return "lz4"
	case MethodZstd:
		return "zstd"
	}
	return fmt.Sprintf("method(%d)", byte(m))
}

// ParseMethod maps a codec name to a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "lz4", "":
		return MethodLZ4, nil
	case "zstd":
		return MethodZstd, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Entry holds the metadata of one archived file.
type Entry struct {
	Name           string // Relative path within the archive
	OriginalSize   uint64 // Original uncompressed file size
	CompressedSize uint64 // Compressed size in the archive
	offset         int64  // start of the compressed body
}

func (m Method) valid() error {
	if m != MethodLZ4 && m != MethodZstd {
		return fmt.Errorf("%w: %d", ErrUnknownMethod, byte(m))
	}
	return nil
}

func (m Method) newWriter(w io.Writer) (io.WriteCloser, error) {
	switch m {
	case MethodLZ4:
		return lz4.NewWriter(w), nil
	case MethodZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return zw, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, byte(m))
}

func (m Method) newReader(r io.Reader) (io.ReadCloser, error) {
	switch m {
	case MethodLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case MethodZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, byte(m))
}
