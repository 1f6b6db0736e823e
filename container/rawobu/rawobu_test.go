package rawobu

import (
	"bytes"
	"io"
	"testing"
)

func TestNextUnitReturnsEntireStreamOnce(t *testing.T) {
	want := []byte{0x12, 0x00, 0x2a, 0x05, 0xde, 0xad, 0xbe, 0xef, 0xff}
	d := Open(bytes.NewReader(want))

	data, pts, err := d.NextUnit()
	if err != nil {
		t.Fatalf("NextUnit: %v", err)
	}
	if pts != 0 {
		t.Errorf("pts = %d, want 0", pts)
	}
	if !bytes.Equal(data, want) {
		t.Errorf("data = %v, want %v", data, want)
	}

	if _, _, err := d.NextUnit(); err != io.EOF {
		t.Errorf("second NextUnit err = %v, want io.EOF", err)
	}
}

func TestNextUnitEmptyStream(t *testing.T) {
	d := Open(bytes.NewReader(nil))
	if _, _, err := d.NextUnit(); err != io.EOF {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

func TestCodec(t *testing.T) {
	if got := Open(bytes.NewReader(nil)).Codec(); got != "av01" {
		t.Errorf("Codec() = %q, want av01", got)
	}
}
