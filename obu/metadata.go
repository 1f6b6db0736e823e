/*
DESCRIPTION
  metadata.go parses the Metadata OBU, §5.11: a LEB128 type tag
  dispatching to HDR-CLL, HDR-MDCV, Scalability (with the optional
  scalability-structure substate), ITU-T T.35 and Timecode payloads.
  original_source/ does not parse metadata OBU contents, so this is
  grounded directly on the AV1 bitstream specification; field naming and
  the tagged-variant dispatch follow header.go's Type/String() pattern.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import (
	"bytes"

	"github.com/ausocean/av1inspect/bitreader"
)

// MetadataType identifies the kind of payload a Metadata OBU carries,
// metadata_type in the specification.
type MetadataType uint32

const (
	MetadataReserved0  MetadataType = 0
	MetadataHDRCLL     MetadataType = 1
	MetadataHDRMDCV    MetadataType = 2
	MetadataScalability MetadataType = 3
	MetadataITUT35     MetadataType = 4
	MetadataTimecode   MetadataType = 5
)

func (t MetadataType) String() string {
	switch t {
	case MetadataHDRCLL:
		return "HDR_CLL"
	case MetadataHDRMDCV:
		return "HDR_MDCV"
	case MetadataScalability:
		return "SCALABILITY"
	case MetadataITUT35:
		return "ITUT_T35"
	case MetadataTimecode:
		return "TIMECODE"
	default:
		return "RESERVED"
	}
}

// HDRCLL is metadata_hdr_cll(), §5.11.2.
type HDRCLL struct {
	MaxCLL  uint16
	MaxFALL uint16
}

// HDRMDCV is metadata_hdr_mdcv(), §5.11.3.
type HDRMDCV struct {
	PrimaryChromaticityX [3]uint16
	PrimaryChromaticityY [3]uint16
	WhitePointX          uint16
	WhitePointY          uint16
	LuminanceMax         uint32
	LuminanceMin         uint32
}

// TemporalGroupEntry is one entry of scalability_structure()'s temporal
// group description, §5.11.5.
type TemporalGroupEntry struct {
	TemporalID                uint8
	TemporalSwitchingUpPoint  bool
	SpatialSwitchingUpPoint   bool
	RefPicDiffs               []uint8
}

// ScalabilityStructure is scalability_structure(), §5.11.5, present only
// when the scalability mode is SCALABILITY_SS.
type ScalabilityStructure struct {
	SpatialLayersCount int
	LayerMaxWidth      []uint16
	LayerMaxHeight     []uint16
	LayerRefID         []uint8
	TemporalGroup      []TemporalGroupEntry
}

// Scalability is metadata_scalability(), §5.11.4.
type Scalability struct {
	ModeIDC   uint8
	Structure *ScalabilityStructure // nil unless ModeIDC selects SCALABILITY_SS.
}

// scalabilitySS is SCALABILITY_SS, the scalability_mode_idc value that
// carries a scalability_structure().
const scalabilitySS = 14

// ITUT35 is metadata_itut_t35(), §5.11.1.
type ITUT35 struct {
	CountryCode          uint8
	CountryCodeExtension uint8 // Valid only if CountryCode == 0xff.
	Payload              []byte
}

// Timecode is metadata_timecode(), §5.11.6.
type Timecode struct {
	CountingType      uint8
	FullTimestamp     bool
	Discontinuity     bool
	CntDropped        bool
	NFrames           uint16
	Seconds           uint8
	Minutes           uint8
	Hours             uint8
	TimeOffsetLength  uint8
	TimeOffsetValue   uint32
}

// Metadata is the parsed metadata_obu() tagged variant. Exactly one of
// the typed fields is non-nil, selected by Type.
type Metadata struct {
	Type MetadataType

	HDRCLL      *HDRCLL
	HDRMDCV     *HDRMDCV
	Scalability *Scalability
	ITUT35      *ITUT35
	Timecode    *Timecode
}

// ParseMetadata parses a metadata_obu() from payload.
func ParseMetadata(payload []byte) (*Metadata, error) {
	leb := bytes.NewReader(payload)
	typeVal, n, err := bitreader.Leb128(leb)
	if err != nil {
		return nil, errWrap(ErrMalformedHeader, "metadata_obu: metadata_type")
	}
	md := &Metadata{Type: MetadataType(typeVal)}

	rest := payload[n:]

	// ITU-T T.35 is handled by direct byte indexing rather than through
	// the bit reader: its trailing payload is an opaque byte run, and a
	// bit reader's internal buffering would make recovering "everything
	// not yet consumed" unreliable.
	if md.Type == MetadataITUT35 {
		if len(rest) < 1 {
			return nil, errWrap(ErrMalformedSyntax, "metadata_itut_t35: missing country code")
		}
		t := &ITUT35{CountryCode: rest[0]}
		rest = rest[1:]
		if t.CountryCode == 0xff {
			if len(rest) < 1 {
				return nil, errWrap(ErrMalformedSyntax, "metadata_itut_t35: missing extension byte")
			}
			t.CountryCodeExtension = rest[0]
			rest = rest[1:]
		}
		t.Payload = rest
		md.ITUT35 = t
		if Log != nil {
			Log.Debug("parsed metadata", "type", md.Type.String())
		}
		return md, nil
	}

	br := bitreader.New(byteSliceReader(rest))
	r := newFieldReader(br)

	switch md.Type {
	case MetadataHDRCLL:
		md.HDRCLL = &HDRCLL{
			MaxCLL:  uint16(r.f(16)),
			MaxFALL: uint16(r.f(16)),
		}
	case MetadataHDRMDCV:
		m := &HDRMDCV{}
		for i := 0; i < 3; i++ {
			m.PrimaryChromaticityX[i] = uint16(r.f(16))
			m.PrimaryChromaticityY[i] = uint16(r.f(16))
		}
		m.WhitePointX = uint16(r.f(16))
		m.WhitePointY = uint16(r.f(16))
		m.LuminanceMax = r.f(32)
		m.LuminanceMin = r.f(32)
		md.HDRMDCV = m
	case MetadataScalability:
		s := &Scalability{ModeIDC: uint8(r.f(8))}
		if int(s.ModeIDC) == scalabilitySS {
			ss, err := parseScalabilityStructure(r)
			if err != nil {
				return nil, err
			}
			s.Structure = ss
		}
		md.Scalability = s
	case MetadataTimecode:
		tc, err := parseTimecode(r)
		if err != nil {
			return nil, err
		}
		md.Timecode = tc
	default:
		return nil, errWrap(ErrUnsupported, "metadata_obu: unknown metadata_type")
	}

	if r.err() != nil {
		return nil, r.err()
	}

	if Log != nil {
		Log.Debug("parsed metadata", "type", md.Type.String())
	}

	return md, nil
}

// parseScalabilityStructure parses scalability_structure(), §5.11.5.
func parseScalabilityStructure(r *fieldReader) (*ScalabilityStructure, error) {
	ss := &ScalabilityStructure{}

	ss.SpatialLayersCount = int(r.f(2)) + 1
	dimsPresent := r.flag()
	descPresent := r.flag()
	tgPresent := r.flag()
	r.f(3) // scalability_structure_reserved_3bits

	if dimsPresent {
		ss.LayerMaxWidth = make([]uint16, ss.SpatialLayersCount)
		ss.LayerMaxHeight = make([]uint16, ss.SpatialLayersCount)
		for i := 0; i < ss.SpatialLayersCount; i++ {
			ss.LayerMaxWidth[i] = uint16(r.f(16))
			ss.LayerMaxHeight[i] = uint16(r.f(16))
		}
	}
	if descPresent {
		ss.LayerRefID = make([]uint8, ss.SpatialLayersCount)
		for i := 0; i < ss.SpatialLayersCount; i++ {
			ss.LayerRefID[i] = uint8(r.f(8))
		}
	}
	if tgPresent {
		groupSize := int(r.f(8))
		ss.TemporalGroup = make([]TemporalGroupEntry, groupSize)
		for i := 0; i < groupSize; i++ {
			e := &ss.TemporalGroup[i]
			e.TemporalID = uint8(r.f(3))
			e.TemporalSwitchingUpPoint = r.flag()
			e.SpatialSwitchingUpPoint = r.flag()
			refCnt := int(r.f(3))
			e.RefPicDiffs = make([]uint8, refCnt)
			for j := 0; j < refCnt; j++ {
				e.RefPicDiffs[j] = uint8(r.f(8))
			}
		}
	}

	return ss, r.err()
}

// parseTimecode parses metadata_timecode(), §5.11.6.
func parseTimecode(r *fieldReader) (*Timecode, error) {
	tc := &Timecode{}
	tc.CountingType = uint8(r.f(5))
	tc.FullTimestamp = r.flag()
	tc.Discontinuity = r.flag()
	tc.CntDropped = r.flag()
	tc.NFrames = uint16(r.f(9))

	if tc.FullTimestamp {
		tc.Seconds = uint8(r.f(6))
		tc.Minutes = uint8(r.f(6))
		tc.Hours = uint8(r.f(5))
	} else if r.flag() {
		tc.Seconds = uint8(r.f(6))
		if r.flag() {
			tc.Minutes = uint8(r.f(6))
			if r.flag() {
				tc.Hours = uint8(r.f(5))
			}
		}
	}

	tc.TimeOffsetLength = uint8(r.f(5))
	if tc.TimeOffsetLength > 0 {
		tc.TimeOffsetValue = r.f(int(tc.TimeOffsetLength))
	}

	return tc, r.err()
}
