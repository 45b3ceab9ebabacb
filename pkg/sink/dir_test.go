package sink

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"asciidecoder/pkg/progress"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDirCreatesMissingDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "a", "b")
	d, err := OpenDir(root)
	require.NoError(t, err)
	assert.Equal(t, root, d.Root)
	assert.DirExists(t, root)

	// existing directories are fine too
	_, err = OpenDir(root)
	require.NoError(t, err)
}

func TestOpenDirRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := OpenDir(path)
	assert.ErrorIs(t, err, ErrNotDir)
}

func TestDirWriteFile(t *testing.T) {
	tracker := progress.New()
	d := &Dir{Root: t.TempDir(), Tracker: tracker}

	require.NoError(t, d.WriteFile("hello.txt", []byte("hello")))
	require.NoError(t, d.WriteFile("empty", nil))
	// same name again replaces the file
	require.NoError(t, d.WriteFile("hello.txt", []byte("bye")))

	got, err := os.ReadFile(filepath.Join(d.Root, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "bye", string(got))

	info, err := os.Stat(filepath.Join(d.Root, "empty"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())

	assert.EqualValues(t, 8, tracker.Written())
}

func TestDirCreateError(t *testing.T) {
	d := &Dir{Root: t.TempDir()}
	require.NoError(t, os.Mkdir(filepath.Join(d.Root, "taken"), 0o755))

	err := d.WriteFile("taken", []byte("x"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCreate)
	assert.NotErrorIs(t, err, ErrWrite)

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "create", we.Operation())
	assert.Equal(t, "taken", we.Name)

	err = d.WriteFile(filepath.Join("missing", "dir.txt"), []byte("x"))
	assert.ErrorIs(t, err, ErrCreate)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingFile struct {
	f       *os.File
	written int
	limit   int
}

var errDiskFull = errors.New("no space left on device")

func (ff *failingFile) Write(p []byte) (int, error) {
	if ff.written+len(p) > ff.limit {
		n, _ := ff.f.Write(p[:ff.limit-ff.written])
		ff.written += n
		return n, errDiskFull
	}
	n, err := ff.f.Write(p)
	ff.written += n
	return n, err
}

func (ff *failingFile) Close() error {
	return ff.f.Close()
}

func TestDirWriteErrorRemovesPartialFile(t *testing.T) {
	d := &Dir{Root: t.TempDir()}
	d.openFile = func(name string) (io.WriteCloser, error) {
		f, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		return &failingFile{f: f, limit: 3}, nil
	}

	err := d.WriteFile("partial.bin", []byte("0123456789"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errDiskFull)
	assert.NoFileExists(t, filepath.Join(d.Root, "partial.bin"))

	var we *WriteError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "write", we.Operation())
	assert.Equal(t, "write partial.bin: no space left on device", we.Error())
}

func TestDirWriteErrorReportsFailedCleanup(t *testing.T) {
	errBusy := errors.New("device busy")
	d := &Dir{Root: t.TempDir()}
	d.openFile = func(name string) (io.WriteCloser, error) {
		f, err := os.Create(name)
		if err != nil {
			return nil, err
		}
		return &failingFile{f: f, limit: 1}, nil
	}
	d.removeFile = func(string) error { return errBusy }

	err := d.WriteFile("stuck.bin", []byte("0123"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errDiskFull)
	assert.ErrorIs(t, err, errBusy)
	assert.ErrorContains(t, err, "remove partial file: device busy")
	assert.FileExists(t, filepath.Join(d.Root, "stuck.bin"))
}

func TestDirClose(t *testing.T) {
	d, err := OpenDir(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, d.WriteFile("a", []byte("a")))
	assert.NoError(t, d.Close())
}
