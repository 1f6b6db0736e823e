package obu

import (
	"testing"

	"github.com/ausocean/av1inspect/bitreader"
)

func TestParseCdefParamsSkipped(t *testing.T) {
	br := bitreader.New(byteSliceReader([]byte{}))
	r := newFieldReader(br)

	seq := &SequenceHeader{EnableCdef: true}
	fh := &FrameHeader{CodedLossless: true}

	if err := parseCdefParams(r, seq, fh); err != nil {
		t.Fatalf("parseCdefParams: %v", err)
	}
	if fh.CdefParams.Damping != 3 {
		t.Errorf("Damping = %d, want 3", fh.CdefParams.Damping)
	}
	if fh.CdefParams.Bits != 0 {
		t.Errorf("Bits = %d, want 0", fh.CdefParams.Bits)
	}
}

func TestParseCdefParamsNotEnabled(t *testing.T) {
	br := bitreader.New(byteSliceReader([]byte{}))
	r := newFieldReader(br)

	seq := &SequenceHeader{EnableCdef: false}
	fh := &FrameHeader{}

	if err := parseCdefParams(r, seq, fh); err != nil {
		t.Fatalf("parseCdefParams: %v", err)
	}
	if fh.CdefParams.Damping != 3 {
		t.Errorf("Damping = %d, want 3", fh.CdefParams.Damping)
	}
}

func TestParseCdefParamsDecoded(t *testing.T) {
	// damping_minus_3=0, cdef_bits=0 (-> n=1), y_pri=5, y_sec=2,
	// uv_pri=7, uv_sec=1.
	payload := []byte{0x05, 0x9d}
	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)

	seq := &SequenceHeader{EnableCdef: true}
	seq.ColorConfig.NumPlanes = 3
	fh := &FrameHeader{}

	if err := parseCdefParams(r, seq, fh); err != nil {
		t.Fatalf("parseCdefParams: %v", err)
	}
	c := fh.CdefParams
	if c.Damping != 3 {
		t.Errorf("Damping = %d, want 3", c.Damping)
	}
	if c.Bits != 0 {
		t.Errorf("Bits = %d, want 0", c.Bits)
	}
	if c.YPriStrength[0] != 5 || c.YSecStrength[0] != 2 {
		t.Errorf("Y strength = %d/%d, want 5/2", c.YPriStrength[0], c.YSecStrength[0])
	}
	if c.UVPriStrength[0] != 7 || c.UVSecStrength[0] != 1 {
		t.Errorf("UV strength = %d/%d, want 7/1", c.UVPriStrength[0], c.UVSecStrength[0])
	}
}
