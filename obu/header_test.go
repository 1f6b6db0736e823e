package obu

import (
	"bytes"
	"testing"
)

func TestParseHeaderWithSizeField(t *testing.T) {
	// Sequence Header (type=1), has_size_field=1, no extension.
	// byte1 = 0 0001 0 1 0 = 0x0A
	buf := []byte{0x0a, 0x05} // leb128 size = 5 (single byte)
	r := bytes.NewReader(buf)
	h, err := ParseHeader(r, uint32(len(buf)))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Type != TypeSequenceHeader {
		t.Errorf("Type = %v, want SequenceHeader", h.Type)
	}
	if h.HeaderLen != 2 {
		t.Errorf("HeaderLen = %d, want 2", h.HeaderLen)
	}
	if h.PayloadSize != 5 {
		t.Errorf("PayloadSize = %d, want 5", h.PayloadSize)
	}
}

func TestParseHeaderNoSizeField(t *testing.T) {
	// type=2 (Temporal Delimiter), has_size_field=0.
	// byte1 = 0 0010 0 0 0 = 0x10
	buf := []byte{0x10}
	r := bytes.NewReader(buf)
	h, err := ParseHeader(r, 4)
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.Type != TypeTemporalDelimiter {
		t.Errorf("Type = %v, want TemporalDelimiter", h.Type)
	}
	if h.HeaderLen != 1 {
		t.Errorf("HeaderLen = %d, want 1", h.HeaderLen)
	}
	if h.PayloadSize != 3 {
		t.Errorf("PayloadSize = %d, want 3 (sz - header_len)", h.PayloadSize)
	}
}

func TestParseHeaderForbiddenBit(t *testing.T) {
	buf := []byte{0x80}
	_, err := ParseHeader(bytes.NewReader(buf), 1)
	if !Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestParseHeaderExtension(t *testing.T) {
	// type=3 (Frame Header), extension=1, has_size=1.
	// byte1 = 0 0011 1 1 0 = 0x1e
	// byte2: temporal_id=2 (f3), spatial_id=1 (f2), reserved=0 -> 010 01 000 = 0x48
	buf := []byte{0x1e, 0x48, 0x07}
	h, err := ParseHeader(bytes.NewReader(buf), uint32(len(buf)))
	if err != nil {
		t.Fatalf("ParseHeader: %v", err)
	}
	if h.TemporalID != 2 || h.SpatialID != 1 {
		t.Errorf("TemporalID/SpatialID = %d/%d, want 2/1", h.TemporalID, h.SpatialID)
	}
	if h.HeaderLen != 3 {
		t.Errorf("HeaderLen = %d, want 3", h.HeaderLen)
	}
	if h.PayloadSize != 7 {
		t.Errorf("PayloadSize = %d, want 7", h.PayloadSize)
	}
}

func TestParseHeaderSizeExceedsRemaining(t *testing.T) {
	buf := []byte{0x0a, 0xff, 0xff, 0xff, 0xff, 0x0f} // huge leb128 size
	_, err := ParseHeader(bytes.NewReader(buf), 4)
	if !Is(err, ErrMalformedHeader) {
		t.Fatalf("expected ErrMalformedHeader, got %v", err)
	}
}

func TestHeaderString(t *testing.T) {
	h := Header{Type: TypeFrame, HeaderLen: 2, PayloadSize: 100}
	want := "FRAME size=2+100"
	if got := h.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
