package obu

import (
	"testing"

	"github.com/ausocean/av1inspect/bitreader"
)

func TestParseGlobalMotionParamsIntraSkipped(t *testing.T) {
	br := bitreader.New(byteSliceReader([]byte{}))
	r := newFieldReader(br)

	fh := &FrameHeader{FrameIsIntra: true}
	rfman := NewRefFrameManager()

	if err := parseGlobalMotionParams(r, fh, rfman); err != nil {
		t.Fatalf("parseGlobalMotionParams: %v", err)
	}
	for ref := LastFrame; ref <= AltrefFrame; ref++ {
		if fh.GlobalMotionParams.GmType[ref] != GMIdentity {
			t.Errorf("GmType[%d] = %v, want GMIdentity", ref, fh.GlobalMotionParams.GmType[ref])
		}
	}
}

func TestParseGlobalMotionParamsAllIdentity(t *testing.T) {
	// One is_global=0 flag per inter reference (7 refs), all false.
	payload := []byte{0x00}
	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)

	fh := &FrameHeader{FrameIsIntra: false, PrimaryRefFrame: PrimaryRefNone}
	rfman := NewRefFrameManager()

	if err := parseGlobalMotionParams(r, fh, rfman); err != nil {
		t.Fatalf("parseGlobalMotionParams: %v", err)
	}
	want := identityGMParams()
	for ref := LastFrame; ref <= AltrefFrame; ref++ {
		if fh.GlobalMotionParams.GmType[ref] != GMIdentity {
			t.Errorf("GmType[%d] = %v, want GMIdentity", ref, fh.GlobalMotionParams.GmType[ref])
		}
		if fh.GlobalMotionParams.Params[ref] != want {
			t.Errorf("Params[%d] = %v, want identity %v", ref, fh.GlobalMotionParams.Params[ref], want)
		}
	}
}
