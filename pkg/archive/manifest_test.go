package archive

import (
	"bufio"
	"errors"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSkipMarker(t *testing.T) {
	cases := []struct {
		name string
		in   string
		rest string
	}{
		{"at start", Marker + " rest", " rest"},
		{"after text", "Dear list,\nhere it is: " + Marker + "x", "x"},
		{"after partial match", "AsciiCoder.DecodeAsciiCoder.DecodeFiles!", "!"},
		{"partial then A", "AsciiAAsciiCoder.DecodeFiles~", "~"},
		{"end of input right after marker", Marker, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := strings.NewReader(c.in)
			require.NoError(t, SkipMarker(r))
			assert.Equal(t, len(c.rest), r.Len())
		})
	}
}

func TestSkipMarkerNotFound(t *testing.T) {
	for _, in := range []string{"", "AsciiCoder.DecodeFile", "asciicoder.decodefiles", "AsciiCoder DecodeFiles"} {
		err := SkipMarker(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrMarkerNotFound, "input %q", in)
	}
}

func TestSkipMarkerReadError(t *testing.T) {
	boom := errors.New("boom")
	r := bufio.NewReader(iotest.ErrReader(boom))
	err := SkipMarker(r)
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrMarkerNotFound)
}

func TestReadManifest(t *testing.T) {
	cases := []struct {
		name       string
		in         string
		names      []string
		compressed bool
	}{
		{"single file", "foo.txt ~", []string{"foo.txt"}, false},
		{"compressed", "% a.bin ~", []string{"a.bin"}, true},
		{"flag after names", " a b % c ~", []string{"a", "b", "c"}, true},
		{"flag twice", "% x % ~", []string{"x"}, true},
		{"control bytes separate", "\x01one\ttwo\r\nthree\x00~\n", []string{"one", "two", "three"}, false},
		{"empty manifest", "~", nil, false},
		{"duplicates kept", "a.txt a.txt ~", []string{"a.txt", "a.txt"}, false},
		{"tokens containing reserved bytes", "%x x~ ~", []string{"%x", "x~"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			m, err := ReadManifest(strings.NewReader(c.in))
			require.NoError(t, err)
			assert.Equal(t, c.names, m.Names)
			assert.Equal(t, c.compressed, m.Compressed)
		})
	}
}

func TestReadManifestUnterminated(t *testing.T) {
	for _, in := range []string{"", "   ", "foo.txt", "foo.txt %", "a b ~x"} {
		_, err := ReadManifest(strings.NewReader(in))
		assert.ErrorIs(t, err, ErrManifestUnterminated, "input %q", in)
	}
}

func TestReadManifestLeavesBodies(t *testing.T) {
	r := strings.NewReader("a ~\n00$")
	_, err := ReadManifest(r)
	require.NoError(t, err)
	assert.Equal(t, 3, r.Len())
}
