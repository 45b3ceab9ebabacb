package agcp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"asciidecoder/pkg/sink"
)

// Reader gives access to the entries of an AGCP archive.
type Reader struct {
	f        *os.File
	Method   Method
	RootName string
	Entries  []Entry
}

// Open reads and validates the archive header and entry table of path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	r := &Reader{f: f}
	if err := r.readArchiveHeader(); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// readArchiveHeader reads the header and walks the entry metadata
func (r *Reader) readArchiveHeader() error {
	var magicBytes [4]byte
	if _, err := io.ReadFull(r.f, magicBytes[:]); err != nil {
		return fmt.Errorf("read magic: %w", err)
	}
	if string(magicBytes[:]) != Magic {
		return fmt.Errorf("invalid magic number: %q", string(magicBytes[:]))
	}

	var versionByte uint8
	if err := binary.Read(r.f, binary.BigEndian, &versionByte); err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	if versionByte != Version {
		return fmt.Errorf("unsupported version: %d", versionByte)
	}

	if err := binary.Read(r.f, binary.BigEndian, &r.Method); err != nil {
		return fmt.Errorf("read method: %w", err)
	}
	if err := r.Method.valid(); err != nil {
		return err
	}

	rootName, err := readString(r.f)
	if err != nil {
		return fmt.Errorf("read root name: %w", err)
	}
	r.RootName = rootName

	var numEntries uint32
	if err := binary.Read(r.f, binary.BigEndian, &numEntries); err != nil {
		return fmt.Errorf("read num entries: %w", err)
	}

	info, err := r.f.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}
	size := info.Size()

	for i := 0; i < int(numEntries); i++ {
		var e Entry
		if e.Name, err = readString(r.f); err != nil {
			return fmt.Errorf("read relPath %d: %w", i, err)
		}
		if err := binary.Read(r.f, binary.BigEndian, &e.OriginalSize); err != nil {
			return fmt.Errorf("read originalSize %d: %w", i, err)
		}
		if err := binary.Read(r.f, binary.BigEndian, &e.CompressedSize); err != nil {
			return fmt.Errorf("read compressedSize %d: %w", i, err)
		}
		if e.offset, err = r.f.Seek(0, io.SeekCurrent); err != nil {
			return fmt.Errorf("seek current: %w", err)
		}
		if e.CompressedSize > uint64(size-e.offset) {
			return fmt.Errorf("%w: entry %d (%s) claims %d bytes, %d left in file",
				ErrCorrupt, i, e.Name, e.CompressedSize, size-e.offset)
		}
		if e.CompressedSize == 0 && e.OriginalSize != 0 {
			return fmt.Errorf("%w: entry %d (%s) has no body for %d bytes",
				ErrCorrupt, i, e.Name, e.OriginalSize)
		}
		if _, err := r.f.Seek(int64(e.CompressedSize), io.SeekCurrent); err != nil {
			return fmt.Errorf("skip body %d: %w", i, err)
		}
		r.Entries = append(r.Entries, e)
	}
	return nil
}

func readString(rd io.Reader) (string, error) {
	var n uint16
	if err := binary.Read(rd, binary.BigEndian, &n); err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(rd, b); err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadFile decompresses one entry.
func (r *Reader) ReadFile(e Entry) ([]byte, error) {
	if e.OriginalSize == 0 {
		return []byte{}, nil
	}
	sr := io.NewSectionReader(r.f, e.offset, int64(e.CompressedSize))
	zr, err := r.Method.newReader(sr)
	if err != nil {
		return nil, fmt.Errorf("open %s reader for %s: %w", r.Method, e.Name, err)
	}
	defer zr.Close()

	// OriginalSize comes from the file; grow towards it instead of trusting it
	buf := bytes.NewBuffer(make([]byte, 0, min(e.OriginalSize, 1<<16)))
	n, err := io.Copy(buf, io.LimitReader(zr, int64(min(e.OriginalSize, math.MaxInt64-1))+1))
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", e.Name, err)
	}
	if uint64(n) != e.OriginalSize {
		return nil, fmt.Errorf("%w: %s: expected %d bytes, got %d", ErrCorrupt, e.Name, e.OriginalSize, n)
	}
	return buf.Bytes(), nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}

// Unpack extracts every entry of archivePath below outputDir. An empty
// outputDir falls back to the archive's root name.
func Unpack(archivePath, outputDir string) error {
	r, err := Open(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	if outputDir == "" {
		outputDir = r.RootName
	}
	if outputDir == "" {
		outputDir = "."
	}
	dir, err := sink.OpenDir(outputDir)
	if err != nil {
		return err
	}
	for _, e := range r.Entries {
		data, err := r.ReadFile(e)
		if err != nil {
			return err
		}
		if err := dir.WriteFile(e.Name, data); err != nil {
			return err
		}
	}
	return nil
}
