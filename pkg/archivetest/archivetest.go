// Package archivetest builds AsciiCoder.DecodeFiles archives for tests.
//
// Only the decoder is product code; the encoders here produce input that the
// decoder must accept and are not tuned for size or speed.
package archivetest

import (
	"strings"

	"asciidecoder/pkg/armor"
	"asciidecoder/pkg/predict"
)

// Marker opens every archive.
const Marker = "AsciiCoder.DecodeFiles"

// File is one archive entry.
type File struct {
	Name string
	Data []byte
}

// EncodeArmor armors data. A positive width inserts a newline after every
// width symbols.
func EncodeArmor(data []byte, width int) string {
	var (
		sb   strings.Builder
		buf  uint32
		bits int
		col  int
	)
	emit := func(v uint32) {
		sb.WriteByte(byte(v&0x3f) + armor.Base)
		col++
		if width > 0 && col == width {
			sb.WriteByte('\n')
			col = 0
		}
	}
	for _, b := range data {
		buf |= uint32(b) << bits
		bits += 8
		for bits >= 6 {
			emit(buf)
			buf >>= 6
			bits -= 6
		}
	}
	if bits > 0 {
		emit(buf)
	}
	switch len(data) % 3 {
	case 0:
		sb.WriteByte(armor.SentinelZero)
	case 1:
		sb.WriteByte(armor.SentinelFour)
	case 2:
		sb.WriteByte(armor.SentinelTwo)
	}
	return sb.String()
}

// AppendSigned appends the varint encoding of v to dst.
func AppendSigned(dst []byte, v int32) []byte {
	for v < -64 || v > 63 {
		dst = append(dst, byte(v&0x7f)|0x80)
		v >>= 7
	}
	return append(dst, byte(v&0x7f))
}

type bitWriter struct {
	out  []byte
	buf  uint32
	bits uint
}

func (w *bitWriter) write(v uint32, n uint) {
	w.buf |= v << w.bits
	w.bits += n
	for w.bits >= 8 {
		w.out = append(w.out, byte(w.buf))
		w.buf >>= 8
		w.bits -= 8
	}
}

func (w *bitWriter) flush() []byte {
	if w.bits > 0 {
		w.out = append(w.out, byte(w.buf))
		w.buf, w.bits = 0, 0
	}
	return w.out
}

// Compress produces the length-prefixed bit-stream that predict.Decompress
// turns back into data.
func Compress(data []byte) []byte {
	var table [predict.TableSize]byte
	hash := 0
	w := &bitWriter{out: AppendSigned(nil, int32(len(data)))}
	for _, b := range data {
		if table[hash] == b {
			w.write(0, 1)
		} else {
			w.write(1, 1)
			w.write(uint32(b), 8)
			table[hash] = b
		}
		hash = (16*hash + int(b)) % predict.TableSize
	}
	return w.flush()
}

// Build returns an archive holding files, preceded by some unrelated text the
// decoder has to skip.
func Build(files []File, compressed bool) string {
	var sb strings.Builder
	sb.WriteString("Some mail text before the archive.\n\n")
	sb.WriteString(Marker)
	if compressed {
		sb.WriteString(" %")
	}
	for _, f := range files {
		sb.WriteByte(' ')
		sb.WriteString(f.Name)
	}
	sb.WriteString(" ~\n")
	for _, f := range files {
		body := f.Data
		if compressed {
			body = Compress(body)
		}
		sb.WriteString(EncodeArmor(body, 64))
		sb.WriteByte('\n')
	}
	return sb.String()
}
