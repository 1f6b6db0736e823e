package obu

import (
	"testing"

	"github.com/ausocean/av1inspect/bitreader"
)

func TestParseQuantizationParams(t *testing.T) {
	payload := []byte{0x64, 0x85, 0x7e, 0x80}

	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)

	seq := &SequenceHeader{}
	seq.ColorConfig.NumPlanes = 3
	seq.ColorConfig.SeparateUVDeltaQ = false

	fh := &FrameHeader{}
	if err := parseQuantizationParams(r, seq, fh); err != nil {
		t.Fatalf("parseQuantizationParams: %v", err)
	}

	q := fh.QuantizationParams
	if q.BaseQIdx != 100 {
		t.Errorf("BaseQIdx = %d, want 100", q.BaseQIdx)
	}
	if q.DeltaQYDc != 5 {
		t.Errorf("DeltaQYDc = %d, want 5", q.DeltaQYDc)
	}
	if q.DeltaQUDc != 0 {
		t.Errorf("DeltaQUDc = %d, want 0", q.DeltaQUDc)
	}
	if q.DeltaQUAc != -3 {
		t.Errorf("DeltaQUAc = %d, want -3", q.DeltaQUAc)
	}
	// SeparateUVDeltaQ is false, so V mirrors U.
	if q.DeltaQVDc != q.DeltaQUDc || q.DeltaQVAc != q.DeltaQUAc {
		t.Errorf("DeltaQVDc/DeltaQVAc = %d/%d, want mirrored U values", q.DeltaQVDc, q.DeltaQVAc)
	}
	if q.UsingQMatrix {
		t.Error("UsingQMatrix = true, want false")
	}
}
