// Package archive locates AsciiCoder.DecodeFiles archives in arbitrary text
// and recovers the files they carry.
package archive

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"asciidecoder/pkg/armor"
	"asciidecoder/pkg/predict"
	"asciidecoder/pkg/progress"

	"github.com/sirupsen/logrus"
)

// Sink receives every recovered entry.
type Sink interface {
	WriteFile(name string, data []byte) error
}

// Stages reported by EntryError.
const (
	StageDecode     = "decode"
	StageDecompress = "decompress"
)

// EntryError is a fatal error while recovering one entry.
type EntryError struct {
	Name  string
	Stage string
	Err   error
}

func (e *EntryError) Error() string {
	if e.Stage == StageDecode {
		return fmt.Sprintf("can't decode '%s' (input file truncated?): %v", e.Name, e.Err)
	}
	return fmt.Sprintf("can't %s '%s': %v", e.Stage, e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// FailedEntry is an entry the sink could not store.
type FailedEntry struct {
	Name string
	Err  error
}

// Report summarizes a successful Extract.
type Report struct {
	Manifest *Manifest
	Written  []string
	Failed   []FailedEntry
}

// Options configures Extract.
type Options struct {
	Sink Sink
	// Logger receives sink failures. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
	// OnEntry is called with each name before its body is decoded.
	OnEntry func(name string)
	// Progress, if set, counts recovered entries and bytes.
	Progress *progress.Tracker
}

// Extract finds the archive in r and hands every entry to opts.Sink.
//
// Marker, manifest, armor and decompression errors abort the run. Sink
// errors are logged and recorded in the report, and the next entry is
// processed; they do not make Extract fail.
func Extract(r io.Reader, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	br := bufio.NewReader(r)
	if err := SkipMarker(br); err != nil {
		return nil, err
	}
	m, err := ReadManifest(br)
	if err != nil {
		return nil, err
	}
	logger.WithFields(logrus.Fields{
		"entries":    len(m.Names),
		"compressed": m.Compressed,
	}).Debug("manifest read")

	report := &Report{Manifest: m}
	for _, name := range m.Names {
		if opts.OnEntry != nil {
			opts.OnEntry(name)
		}

		data, err := decodeEntry(br, name, m.Compressed)
		if err != nil {
			return report, err
		}

		if err := opts.Sink.WriteFile(name, data); err != nil {
			logger.WithError(err).Error(describeSinkError(name, err))
			report.Failed = append(report.Failed, FailedEntry{Name: name, Err: err})
			if opts.Progress != nil {
				opts.Progress.AddFailure()
			}
			continue
		}
		report.Written = append(report.Written, name)
		if opts.Progress != nil {
			opts.Progress.AddFile(uint64(len(data)))
		}
	}
	return report, nil
}

func decodeEntry(r io.ByteReader, name string, compressed bool) ([]byte, error) {
	data, err := armor.Decode(r)
	if err != nil {
		return nil, &EntryError{Name: name, Stage: StageDecode, Err: err}
	}
	if !compressed {
		return data, nil
	}
	data, err = predict.Decompress(bytes.NewReader(data))
	if err != nil {
		return nil, &EntryError{Name: name, Stage: StageDecompress, Err: err}
	}
	return data, nil
}

// opError is implemented by sink errors that know which step failed.
type opError interface {
	Operation() string
}

func describeSinkError(name string, err error) string {
	var oe opError
	if errors.As(err, &oe) {
		return fmt.Sprintf("can't %s file '%s'", oe.Operation(), name)
	}
	return fmt.Sprintf("can't store '%s'", name)
}
