package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// Tracker counts recovered entries. It is not safe for concurrent use; the
// decoder runs on a single goroutine.
type Tracker struct {
	files     int
	failed    int
	bytes     uint64
	written   uint64
	startTime time.Time
	now       func() time.Time
}

// New starts a tracker.
func New() *Tracker {
	t := &Tracker{now: time.Now}
	t.startTime = t.now()
	return t
}

// AddFile records one recovered entry of n bytes
func (t *Tracker) AddFile(n uint64) {
	t.files++
	t.bytes += n
}

// AddFailure records an entry that could not be stored
func (t *Tracker) AddFailure() {
	t.failed++
}

// AddBytes records bytes that reached storage
func (t *Tracker) AddBytes(n uint64) {
	t.written += n
}

// Files returns the number of recovered entries
func (t *Tracker) Files() int { return t.files }

// Failed returns the number of entries the sink rejected
func (t *Tracker) Failed() int { return t.failed }

// Bytes returns the decoded size of all recovered entries
func (t *Tracker) Bytes() uint64 { return t.bytes }

// Written returns the bytes that reached storage, after any repack compression
func (t *Tracker) Written() uint64 { return t.written }

// formatRate returns a human-readable rate string
func formatRate(bytesPerSec uint64) string {
	return humanize.IBytes(bytesPerSec) + "/s"
}

// Report writes the final summary line to w
func (t *Tracker) Report(w io.Writer) {
	elapsed := t.now().Sub(t.startTime).Seconds()
	if elapsed < 0.001 {
		elapsed = 0.001 // Avoid division by zero
	}
	fmt.Fprintf(w, "Recovered %d %s (%s) in %.1f seconds (avg rate: %s)",
		t.files, plural(t.files, "file", "files"), humanize.IBytes(t.bytes),
		elapsed, formatRate(uint64(float64(t.bytes)/elapsed)))
	if t.written != t.bytes {
		fmt.Fprintf(w, ", %s stored", humanize.IBytes(t.written))
	}
	if t.failed > 0 {
		fmt.Fprintf(w, ", %d failed", t.failed)
	}
	fmt.Fprintln(w)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// Writer is a writer that tracks bytes written for progress reporting
type Writer struct {
	W       io.Writer
	Tracker *Tracker
}

// Write implements io.Writer and tracks bytes written
func (pw *Writer) Write(p []byte) (n int, err error) {
	n, err = pw.W.Write(p)
	if n > 0 && pw.Tracker != nil {
		pw.Tracker.AddBytes(uint64(n))
	}
	return
}
