// Package lib re-exports the decoder for programs that embed it instead of
// running the asciidecoder command.
package lib

import (
	"io"

	"asciidecoder/pkg/agcp"
	"asciidecoder/pkg/archive"
	"asciidecoder/pkg/sink"
)

// Marker re-exported from archive
const Marker = archive.Marker

// Manifest re-exported from archive
type Manifest = archive.Manifest

// Report re-exported from archive
type Report = archive.Report

// Options re-exported from archive
type Options = archive.Options

// Sink re-exported from archive
type Sink = archive.Sink

// Re-exported errors
var (
	ErrMarkerNotFound       = archive.ErrMarkerNotFound
	ErrManifestUnterminated = archive.ErrManifestUnterminated
)

// Extract is a wrapper around archive.Extract
func Extract(r io.Reader, opts Options) (*Report, error) {
	return archive.Extract(r, opts)
}

// ExtractToDir recovers every file in r below dir, creating dir if needed.
func ExtractToDir(r io.Reader, dir string) (*Report, error) {
	d, err := sink.OpenDir(dir)
	if err != nil {
		return nil, err
	}
	return archive.Extract(r, Options{Sink: d})
}

// Repack recovers every file in r into a new AGCP archive at output.
func Repack(r io.Reader, output string, method agcp.Method) (*Report, error) {
	w, err := agcp.Create(output, method, "")
	if err != nil {
		return nil, err
	}
	report, err := archive.Extract(r, Options{Sink: w})
	if err != nil {
		_ = w.Abort()
		return report, err
	}
	return report, w.Close()
}

// Unpack is a wrapper around agcp.Unpack
func Unpack(input, outputDir string) error {
	return agcp.Unpack(input, outputDir)
}
