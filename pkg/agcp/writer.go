package agcp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"asciidecoder/pkg/progress"
	"asciidecoder/pkg/sink"
)

// Writer appends entries to an AGCP archive as they arrive. The entry count
// in the header is filled in by Close.
type Writer struct {
	f           *os.File
	path        string
	method      Method
	count       uint32
	countOffset int64
	Tracker     *progress.Tracker
}

// Create starts a new archive at output, replacing any existing file.
func Create(output string, method Method, rootName string) (*Writer, error) {
	if err := method.valid(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	f, err := os.Create(output)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}

	w := &Writer{f: f, path: output, method: method}
	if err := w.writeArchiveHeader(rootName); err != nil {
		_ = w.Abort()
		return nil, err
	}
	return w, nil
}

// writeArchiveHeader writes the archive header with a zero entry count
func (w *Writer) writeArchiveHeader(rootName string) error {
	if _, err := w.f.Write([]byte(Magic)); err != nil {
		return fmt.Errorf("write magic: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, uint8(Version)); err != nil {
		return fmt.Errorf("write version: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, w.method); err != nil {
		return fmt.Errorf("write method: %w", err)
	}
	if len(rootName) > math.MaxUint16 {
		return fmt.Errorf("root name too long: %d bytes", len(rootName))
	}
	if err := binary.Write(w.f, binary.BigEndian, uint16(len(rootName))); err != nil {
		return fmt.Errorf("write root name length: %w", err)
	}
	if _, err := w.f.Write([]byte(rootName)); err != nil {
		return fmt.Errorf("write root name: %w", err)
	}

	var err error
	if w.countOffset, err = w.f.Seek(0, io.SeekCurrent); err != nil {
		return fmt.Errorf("seek entry count: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, uint32(0)); err != nil {
		return fmt.Errorf("write number of entries: %w", err)
	}
	return nil
}

// WriteFile appends one entry. On failure the partial entry is cut off
// again so the archive stays readable.
func (w *Writer) WriteFile(name string, data []byte) error {
	if len(name) > math.MaxUint16 {
		return &sink.WriteError{Op: "create", Name: name, Err: fmt.Errorf("name too long: %d bytes", len(name))}
	}
	start, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return &sink.WriteError{Op: "create", Name: name, Err: err}
	}
	if err := w.writeEntry(start, name, data); err != nil {
		if terr := w.rollback(start); terr != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, terr)
		}
		return &sink.WriteError{Op: "write", Name: name, Err: err}
	}
	w.count++
	return nil
}

func (w *Writer) writeEntry(start int64, name string, data []byte) error {
	// Write metadata placeholder
	placeholderSize := 2 + len(name) + 8 + 8 // relPathLen + relPath + sizes
	if _, err := w.f.Write(make([]byte, placeholderSize)); err != nil {
		return fmt.Errorf("write placeholder: %w", err)
	}

	bodyStart := start + int64(placeholderSize)
	if err := w.compressBody(data); err != nil {
		return err
	}
	endPos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek end: %w", err)
	}

	if err := w.updateEntryMetadata(start, name, uint64(len(data)), uint64(endPos-bodyStart)); err != nil {
		return err
	}
	if _, err := w.f.Seek(endPos, io.SeekStart); err != nil {
		return fmt.Errorf("seek back: %w", err)
	}
	return nil
}

// compressBody compresses data into the archive
func (w *Writer) compressBody(data []byte) error {
	if len(data) == 0 {
		return nil // Empty file, no data written
	}
	pw := &progress.Writer{W: w.f, Tracker: w.Tracker}
	zw, err := w.method.newWriter(pw)
	if err != nil {
		return err
	}
	if _, err := io.Copy(zw, bytes.NewReader(data)); err != nil {
		zw.Close()
		return fmt.Errorf("write compressed: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close %s writer: %w", w.method, err)
	}
	return nil
}

// updateEntryMetadata updates the metadata for an entry in the archive
func (w *Writer) updateEntryMetadata(offset int64, name string, originalSize, compressedSize uint64) error {
	if _, err := w.f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("seek metadata: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, uint16(len(name))); err != nil {
		return fmt.Errorf("write relPathLen: %w", err)
	}
	if _, err := w.f.Write([]byte(name)); err != nil {
		return fmt.Errorf("write relPath: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, originalSize); err != nil {
		return fmt.Errorf("write originalSize: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, compressedSize); err != nil {
		return fmt.Errorf("write compressedSize: %w", err)
	}
	return nil
}

func (w *Writer) rollback(start int64) error {
	if err := w.f.Truncate(start); err != nil {
		return err
	}
	_, err := w.f.Seek(start, io.SeekStart)
	return err
}

// Close writes the entry count and closes the file.
func (w *Writer) Close() error {
	if _, err := w.f.Seek(w.countOffset, io.SeekStart); err != nil {
		w.f.Close()
		return fmt.Errorf("seek entry count: %w", err)
	}
	if err := binary.Write(w.f, binary.BigEndian, w.count); err != nil {
		w.f.Close()
		return fmt.Errorf("write number of entries: %w", err)
	}
	return w.f.Close()
}

// Abort closes and removes the archive. Use it instead of Close when the
// run fails, so no incomplete archive is left behind.
func (w *Writer) Abort() error {
	cerr := w.f.Close()
	if err := os.Remove(w.path); err != nil {
		return fmt.Errorf("remove %s: %w", w.path, err)
	}
	if cerr != nil && !errors.Is(cerr, os.ErrClosed) {
		return fmt.Errorf("close %s: %w", w.path, cerr)
	}
	return nil
}
