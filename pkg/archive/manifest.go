package archive

import (
	"errors"
	"fmt"
	"io"
)

// Marker announces an archive. Anything before it is ignored.
const Marker = "AsciiCoder.DecodeFiles"

// Reserved manifest tokens.
const (
	TokenCompressed = "%"
	TokenEnd        = "~"
)

var (
	// ErrMarkerNotFound is returned when the input holds no archive marker.
	ErrMarkerNotFound = errors.New("no " + Marker + " archive found")
	// ErrManifestUnterminated is returned when the input ends inside the manifest.
	ErrManifestUnterminated = errors.New("manifest not terminated")
)

// Manifest lists the archive entries in the order their bodies appear.
type Manifest struct {
	Names      []string
	Compressed bool // applies to every entry
}

// SkipMarker consumes r up to and including the archive marker.
//
// The reset-on-mismatch match is only correct because Marker[0] does not
// occur again in Marker. Use a real substring search if the marker ever
// becomes configurable.
func SkipMarker(r io.ByteReader) error {
	idx := 0
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			return ErrMarkerNotFound
		} else if err != nil {
			return fmt.Errorf("scan for marker: %w", err)
		}
		if c != Marker[idx] {
			idx = 0
		}
		if c == Marker[idx] {
			idx++
			if idx == len(Marker) {
				return nil
			}
		}
	}
}

// readToken returns the next run of bytes > 0x20, or io.EOF if the input
// ends before one starts.
func readToken(r io.ByteReader) (string, error) {
	var tok []byte
	for {
		c, err := r.ReadByte()
		if err == io.EOF {
			if len(tok) == 0 {
				return "", io.EOF
			}
			return string(tok), nil
		} else if err != nil {
			return "", err
		}
		if c > ' ' {
			tok = append(tok, c)
		} else if len(tok) > 0 {
			return string(tok), nil
		}
	}
}

// ReadManifest reads the entry names that follow the marker, up to the
// terminating "~" token.
func ReadManifest(r io.ByteReader) (*Manifest, error) {
	m := &Manifest{}
	for {
		tok, err := readToken(r)
		if err == io.EOF {
			return nil, ErrManifestUnterminated
		} else if err != nil {
			return nil, fmt.Errorf("read manifest: %w", err)
		}
		switch tok {
		case TokenEnd:
			return m, nil
		case TokenCompressed:
			m.Compressed = true
		default:
			m.Names = append(m.Names, tok)
		}
	}
}
