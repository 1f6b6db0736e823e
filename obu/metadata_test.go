package obu

import "testing"

func TestParseMetadataHDRCLL(t *testing.T) {
	// metadata_type = 1 (HDR_CLL), leb128 single byte.
	// max_cll=1000 (0x03E8), max_fall=400 (0x0190).
	payload := []byte{0x01, 0x03, 0xe8, 0x01, 0x90}
	md, err := ParseMetadata(payload)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if md.Type != MetadataHDRCLL {
		t.Fatalf("Type = %v, want MetadataHDRCLL", md.Type)
	}
	if md.HDRCLL == nil {
		t.Fatal("HDRCLL is nil")
	}
	if md.HDRCLL.MaxCLL != 1000 || md.HDRCLL.MaxFALL != 400 {
		t.Errorf("HDRCLL = %+v, want MaxCLL=1000 MaxFALL=400", md.HDRCLL)
	}
}

func TestParseMetadataITUT35(t *testing.T) {
	// metadata_type = 4 (ITUT_T35). country_code = 0xff selects the
	// extension byte, followed by arbitrary payload bytes.
	payload := []byte{0x04, 0xff, 0x26, 0xde, 0xad, 0xbe, 0xef}
	md, err := ParseMetadata(payload)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if md.ITUT35 == nil {
		t.Fatal("ITUT35 is nil")
	}
	if md.ITUT35.CountryCode != 0xff {
		t.Errorf("CountryCode = %#x, want 0xff", md.ITUT35.CountryCode)
	}
	if md.ITUT35.CountryCodeExtension != 0x26 {
		t.Errorf("CountryCodeExtension = %#x, want 0x26", md.ITUT35.CountryCodeExtension)
	}
	want := []byte{0xde, 0xad, 0xbe, 0xef}
	if len(md.ITUT35.Payload) != len(want) {
		t.Fatalf("Payload length = %d, want %d", len(md.ITUT35.Payload), len(want))
	}
	for i, b := range want {
		if md.ITUT35.Payload[i] != b {
			t.Errorf("Payload[%d] = %#x, want %#x", i, md.ITUT35.Payload[i], b)
		}
	}
}

func TestParseMetadataITUT35NoExtension(t *testing.T) {
	// country_code != 0xff: no extension byte, payload starts immediately.
	payload := []byte{0x04, 0x26, 0x01, 0x02}
	md, err := ParseMetadata(payload)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if md.ITUT35.CountryCode != 0x26 {
		t.Errorf("CountryCode = %#x, want 0x26", md.ITUT35.CountryCode)
	}
	if len(md.ITUT35.Payload) != 2 || md.ITUT35.Payload[0] != 0x01 || md.ITUT35.Payload[1] != 0x02 {
		t.Errorf("Payload = %v, want [1 2]", md.ITUT35.Payload)
	}
}

func TestParseMetadataUnknownType(t *testing.T) {
	payload := []byte{0x06} // reserved/unknown metadata_type.
	_, err := ParseMetadata(payload)
	if !Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseMetadataScalabilityNonSS(t *testing.T) {
	// scalability_mode_idc = 0 (not SCALABILITY_SS): no structure follows.
	payload := []byte{0x03, 0x00}
	md, err := ParseMetadata(payload)
	if err != nil {
		t.Fatalf("ParseMetadata: %v", err)
	}
	if md.Scalability == nil || md.Scalability.Structure != nil {
		t.Errorf("Scalability = %+v, want Structure nil", md.Scalability)
	}
}
