package obu

import (
	"testing"

	"github.com/ausocean/av1inspect/bitreader"
)

func TestParseDeltaQAndLFParams(t *testing.T) {
	// delta_q_present=1, delta_q_res=10(2), delta_lf_present=1,
	// delta_lf_res=01(1), delta_lf_multi=1.
	payload := []byte{0b11010110}
	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)

	fh := &FrameHeader{}
	fh.QuantizationParams.BaseQIdx = 50
	if err := parseDeltaQParams(r, fh); err != nil {
		t.Fatalf("parseDeltaQParams: %v", err)
	}
	if !fh.DeltaQParams.DeltaQPresent || fh.DeltaQParams.DeltaQRes != 2 {
		t.Errorf("DeltaQPresent/DeltaQRes = %v/%d, want true/2", fh.DeltaQParams.DeltaQPresent, fh.DeltaQParams.DeltaQRes)
	}

	if err := parseDeltaLFParams(r, fh); err != nil {
		t.Fatalf("parseDeltaLFParams: %v", err)
	}
	if !fh.DeltaLFParams.DeltaLFPresent || fh.DeltaLFParams.DeltaLFRes != 1 || !fh.DeltaLFParams.DeltaLFMulti {
		t.Errorf("DeltaLFParams = %+v, want present/res=1/multi=true", fh.DeltaLFParams)
	}
}

func TestParseDeltaQParamsSkippedWhenBaseQIdxZero(t *testing.T) {
	br := bitreader.New(byteSliceReader([]byte{0x00}))
	r := newFieldReader(br)

	fh := &FrameHeader{}
	if err := parseDeltaQParams(r, fh); err != nil {
		t.Fatalf("parseDeltaQParams: %v", err)
	}
	if fh.DeltaQParams.DeltaQPresent {
		t.Error("DeltaQPresent = true, want false when BaseQIdx is 0")
	}
}
