// Package sink stores recovered archive entries.
package sink

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"asciidecoder/pkg/progress"
)

var (
	// ErrCreate marks a failure to create an output file.
	ErrCreate = errors.New("create failed")
	// ErrWrite marks a failure while writing an output file.
	ErrWrite = errors.New("write failed")
	// ErrNotDir is returned by OpenDir when the path exists and is not a directory.
	ErrNotDir = errors.New("not a directory")
)

// WriteError reports which step failed for which entry.
type WriteError struct {
	Op   string // "create" or "write"
	Name string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Name, e.Err)
}

func (e *WriteError) Unwrap() []error {
	kind := ErrWrite
	if e.Op == "create" {
		kind = ErrCreate
	}
	return []error{kind, e.Err}
}

// Operation returns the failed step.
func (e *WriteError) Operation() string {
	return e.Op
}

// Dir writes every entry as a file below Root. Names are used as given,
// so a later entry with the same name replaces an earlier one.
type Dir struct {
	Root       string
	Tracker    *progress.Tracker
	openFile   func(name string) (io.WriteCloser, error)
	removeFile func(name string) error
}

// OpenDir returns a Dir rooted at root, creating the directory if it does
// not exist yet.
func OpenDir(root string) (*Dir, error) {
	info, err := os.Stat(root)
	if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", root, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat directory %s: %w", root, err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotDir)
	}
	return &Dir{Root: root}, nil
}

func (d *Dir) create(path string) (io.WriteCloser, error) {
	if d.openFile != nil {
		return d.openFile(path)
	}
	return os.Create(path)
}

func (d *Dir) remove(path string) error {
	if d.removeFile != nil {
		return d.removeFile(path)
	}
	return os.Remove(path)
}

// WriteFile stores data as name. A partially written file is removed.
func (d *Dir) WriteFile(name string, data []byte) error {
	path := filepath.Join(d.Root, name)
	f, err := d.create(path)
	if err != nil {
		return &WriteError{Op: "create", Name: name, Err: err}
	}

	pw := &progress.Writer{W: f, Tracker: d.Tracker}
	_, err = io.Copy(pw, bytes.NewReader(data))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if rerr := d.remove(path); rerr != nil {
			err = errors.Join(err, fmt.Errorf("remove partial file: %w", rerr))
		}
		return &WriteError{Op: "write", Name: name, Err: err}
	}
	return nil
}

// Close is a no-op; every file is closed by WriteFile.
func (d *Dir) Close() error {
	return nil
}
