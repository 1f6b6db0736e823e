package obu

import "testing"

func TestParseSequenceHeaderReducedStillPicture(t *testing.T) {
	payload := []byte{0x18, 0x00, 0x00, 0x00, 0x20}

	sh, err := ParseSequenceHeader(payload)
	if err != nil {
		t.Fatalf("ParseSequenceHeader: %v", err)
	}
	if sh.SeqProfile != 0 {
		t.Errorf("SeqProfile = %d, want 0", sh.SeqProfile)
	}
	if !sh.StillPicture || !sh.ReducedStillPictureHeader {
		t.Errorf("StillPicture/ReducedStillPictureHeader = %v/%v, want true/true", sh.StillPicture, sh.ReducedStillPictureHeader)
	}
	if len(sh.OperatingPoints) != 1 || sh.OperatingPoints[0].SeqLevelIdx != 0 {
		t.Errorf("OperatingPoints = %+v, want one entry with SeqLevelIdx 0", sh.OperatingPoints)
	}
	if sh.FrameWidthBits != 1 || sh.FrameHeightBits != 1 {
		t.Errorf("FrameWidthBits/FrameHeightBits = %d/%d, want 1/1", sh.FrameWidthBits, sh.FrameHeightBits)
	}
	if sh.MaxFrameWidth != 1 || sh.MaxFrameHeight != 1 {
		t.Errorf("MaxFrameWidth/MaxFrameHeight = %d/%d, want 1/1", sh.MaxFrameWidth, sh.MaxFrameHeight)
	}
	if sh.FrameIDNumbersPresent {
		t.Error("FrameIDNumbersPresent = true, want false under reduced_still_picture_header")
	}
	if sh.SeqForceScreenContentTools != SelectScreenContentTools || sh.SeqForceIntegerMV != SelectIntegerMV {
		t.Errorf("SeqForceScreenContentTools/SeqForceIntegerMV = %d/%d, want select defaults", sh.SeqForceScreenContentTools, sh.SeqForceIntegerMV)
	}
	if sh.ColorConfig.BitDepth != 8 || sh.ColorConfig.NumPlanes != 3 {
		t.Errorf("ColorConfig.BitDepth/NumPlanes = %d/%d, want 8/3", sh.ColorConfig.BitDepth, sh.ColorConfig.NumPlanes)
	}
	if !sh.ColorConfig.SubsamplingX || !sh.ColorConfig.SubsamplingY {
		t.Error("expected 4:2:0 subsampling for profile 0")
	}
	if sh.FilmGrainParamsPresent {
		t.Error("FilmGrainParamsPresent = true, want false")
	}
}

func TestParseSequenceHeaderFullWithOrderHint(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x34, 0x00, 0x20}

	sh, err := ParseSequenceHeader(payload)
	if err != nil {
		t.Fatalf("ParseSequenceHeader: %v", err)
	}
	if sh.ReducedStillPictureHeader {
		t.Error("ReducedStillPictureHeader = true, want false")
	}
	if len(sh.OperatingPoints) != 1 {
		t.Fatalf("len(OperatingPoints) = %d, want 1", len(sh.OperatingPoints))
	}
	if sh.FrameIDNumbersPresent {
		t.Error("FrameIDNumbersPresent = true, want false")
	}
	if !sh.EnableOrderHint {
		t.Fatal("EnableOrderHint = false, want true")
	}
	if sh.OrderHintBits != 3 {
		t.Errorf("OrderHintBits = %d, want 3 (order_hint_bits_minus_1=2)", sh.OrderHintBits)
	}
	if sh.SeqForceScreenContentTools != SelectScreenContentTools {
		t.Errorf("SeqForceScreenContentTools = %d, want SelectScreenContentTools", sh.SeqForceScreenContentTools)
	}
	if sh.SeqForceIntegerMV != SelectIntegerMV {
		t.Errorf("SeqForceIntegerMV = %d, want SelectIntegerMV", sh.SeqForceIntegerMV)
	}
}

func TestParseSequenceHeaderRejectsMultipleOperatingPoints(t *testing.T) {
	// seq_profile=0, still_picture=0, reduced=0, timing_info_present=0,
	// initial_display_delay_present=0, operating_points_cnt_minus_1=1:
	// parsing aborts as soon as this field is read, so nothing past it
	// needs to be well-formed.
	payload := []byte{0x00, 0x10}
	if _, err := ParseSequenceHeader(payload); err == nil {
		t.Fatal("expected an error for more than one operating point")
	}
}
