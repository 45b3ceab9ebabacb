package armor_test

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"asciidecoder/pkg/archivetest"
	"asciidecoder/pkg/armor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeString(s string) ([]byte, error) {
	return armor.Decode(strings.NewReader(s))
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []byte
	}{
		{"empty", "#", nil},
		{"one zero byte", "00$", []byte{0x00}},
		{"two bytes", "000%", []byte{0x00, 0x00}},
		{"three bytes", "0000#", []byte{0x00, 0x00, 0x00}},
		{"low bits first", "1@$", []byte{0x01}},
		{"all ones", "oo$", []byte{0xff}},
		{"formatting skipped", " 0\n0\r\t$", []byte{0x00}},
		{"nothing before sentinel but spaces", "  \n#", nil},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := decodeString(c.in)
			require.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	cases := []struct {
		name   string
		in     string
		err    error
		symbol byte
	}{
		{"hash with 4 leftover bits", "00#", armor.ErrTerminatorMismatch, '#'},
		{"percent with 4 leftover bits", "00%", armor.ErrTerminatorMismatch, '%'},
		{"dollar with 0 leftover bits", "$", armor.ErrTerminatorMismatch, '$'},
		{"dollar with 2 leftover bits", "000$", armor.ErrTerminatorMismatch, '$'},
		{"symbol above alphabet", "00p", armor.ErrAlphabet, 'p'},
		{"symbol below alphabet", "0/", armor.ErrAlphabet, '/'},
		{"tilde", "~", armor.ErrAlphabet, '~'},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := decodeString(c.in)
			require.ErrorIs(t, err, c.err)
			var se *armor.SymbolError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, c.symbol, se.Symbol)
		})
	}
}

func TestDecodeTruncated(t *testing.T) {
	for _, in := range []string{"", "0000", "00 \n"} {
		_, err := decodeString(in)
		assert.ErrorIs(t, err, armor.ErrTruncated, "input %q", in)
	}
}

func TestDecodeStopsAfterSentinel(t *testing.T) {
	r := strings.NewReader("00$rest")
	got, err := armor.Decode(r)
	require.NoError(t, err)
	assert.Equal(t, []byte{0}, got)
	assert.Equal(t, 4, r.Len())
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	inputs := [][]byte{{}, {0x5a}, {0x5a, 0xa5}, {0x01, 0x02, 0x03}}
	for i := 0; i < 50; i++ {
		b := make([]byte, rnd.Intn(300))
		rnd.Read(b)
		inputs = append(inputs, b)
	}
	for _, in := range inputs {
		for _, width := range []int{0, 1, 76} {
			enc := archivetest.EncodeArmor(in, width)
			got, err := decodeString(enc)
			require.NoError(t, err, "len %d width %d", len(in), width)
			assert.True(t, bytes.Equal(in, got), "len %d width %d", len(in), width)
		}
	}
}

func TestSentinelPerLength(t *testing.T) {
	want := map[int]byte{0: '#', 1: '$', 2: '%', 3: '#'}
	for n, s := range want {
		enc := archivetest.EncodeArmor(make([]byte, n), 0)
		assert.Equal(t, s, enc[len(enc)-1], "length %d", n)
		bits, ok := armor.LeftoverBits(s)
		require.True(t, ok)
		assert.Equal(t, (6-(8*n)%6)%6, bits, "length %d", n)
	}
}
