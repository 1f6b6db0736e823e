/*
DESCRIPTION
  bitreader_test.go tests the Reader's f(n), su(n), ns(n) and LEB128
  codings against hand-computed expectations.
*/

package bitreader

import (
	"bytes"
	"testing"
)

func TestReadBits(t *testing.T) {
	// 0x8f,0xe3 = 1000 1111, 1110 0011
	r := New(bytes.NewReader([]byte{0x8f, 0xe3}))
	cases := []struct {
		n    int
		want uint64
	}{
		{4, 0x8},
		{2, 0x3},
		{4, 0xf},
		{6, 0x23},
	}
	for _, c := range cases {
		got, err := r.ReadBits(c.n)
		if err != nil {
			t.Fatalf("ReadBits(%d): %v", c.n, err)
		}
		if got != c.want {
			t.Errorf("ReadBits(%d) = %#x, want %#x", c.n, got, c.want)
		}
	}
}

func TestReadBitsShort(t *testing.T) {
	r := New(bytes.NewReader([]byte{0xff}))
	if _, err := r.ReadBits(16); err == nil {
		t.Fatal("expected short read error")
	}
}

func TestSUSymmetry(t *testing.T) {
	const n = 7
	for u := uint32(0); u < 1<<n; u++ {
		buf := &bytes.Buffer{}
		// Write u as an n-bit big-endian value padded to a byte boundary.
		w := newBitWriter()
		w.writeBits(uint64(u), n)
		w.flush(buf)

		r := New(bytes.NewReader(buf.Bytes()))
		got, err := r.SU(n)
		if err != nil {
			t.Fatalf("SU(%d): %v", n, err)
		}
		want := int32(u)
		if u >= 1<<(n-1) {
			want -= 1 << n
		}
		if got != want {
			t.Errorf("SU(%d) of %d = %d, want %d", n, u, got, want)
		}
	}
}

func TestNSRange(t *testing.T) {
	for n := uint32(1); n <= 64; n++ {
		// Exhaustively cover every encodable value by feeding the maximum
		// possible bit-width worth of bits and checking the invariant,
		// rather than re-deriving the encoder (which is exactly ns()
		// itself). Instead, check the range/width property directly:
		// any w-1 or w bit prefix must decode in [0, n).
		w := floorLog2(n) + 1
		widths := map[int]bool{w - 1: true, w: true}
		for width := range widths {
			for v := 0; v < 1<<uint(width); v++ {
				buf := &bytes.Buffer{}
				bw := newBitWriter()
				bw.writeBits(uint64(v), width)
				// pad extra bits so reads beyond width don't starve.
				bw.writeBits(0, 8)
				bw.flush(buf)

				r := New(bytes.NewReader(buf.Bytes()))
				got, err := r.NS(n)
				if err != nil {
					t.Fatalf("NS(%d): %v", n, err)
				}
				if got >= n {
					t.Errorf("NS(%d) = %d, want < %d", n, got, n)
				}
			}
		}
	}
}

func TestLeb128RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20, (1 << 32) - 1}
	for _, v := range cases {
		enc := encodeLeb128(v)
		got, n, err := Leb128(bytes.NewReader(enc))
		if err != nil {
			t.Fatalf("Leb128(%d): %v", v, err)
		}
		if got != v {
			t.Errorf("Leb128 round trip: got %d, want %d", got, v)
		}
		if n != len(enc) {
			t.Errorf("Leb128 consumed %d bytes, want %d", n, len(enc))
		}
	}
}

func TestLeb128RejectsNineBytes(t *testing.T) {
	nine := bytes.Repeat([]byte{0x80}, 9)
	_, _, err := Leb128(bytes.NewReader(nine))
	if err == nil {
		t.Fatal("expected error decoding 9 continuation bytes")
	}
}

func TestLeb128RejectsOverflow(t *testing.T) {
	// A value requiring the full 32 bits plus one more nonzero bit.
	enc := []byte{0xff, 0xff, 0xff, 0xff, 0x1f}
	_, _, err := Leb128(bytes.NewReader(enc))
	if err == nil {
		t.Fatal("expected overflow error")
	}
}

// encodeLeb128 is the reference encoder used only by tests.
func encodeLeb128(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}

// bitWriter is a tiny MSB-first bit writer used only by tests to construct
// exact bit patterns for the Reader to consume.
type bitWriter struct {
	bits []bool
}

func newBitWriter() *bitWriter { return &bitWriter{} }

func (w *bitWriter) writeBits(v uint64, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, (v>>uint(i))&1 == 1)
	}
}

func (w *bitWriter) flush(buf *bytes.Buffer) {
	for len(w.bits)%8 != 0 {
		w.bits = append(w.bits, false)
	}
	for i := 0; i < len(w.bits); i += 8 {
		var b byte
		for j := 0; j < 8; j++ {
			if w.bits[i+j] {
				b |= 1 << uint(7-j)
			}
		}
		buf.WriteByte(b)
	}
}
