/*
DESCRIPTION
  sequenceheader.go parses the AV1 Sequence Header OBU (uncompressed
  header syntax section 5.5). Grounded in style on
  codec/h264/h264dec/sps.go's field-by-field NewSPS, adapted to AV1's
  conditional structure.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import (
	"github.com/ausocean/av1inspect/bitreader"
)

// ColorConfig holds the color_config() syntax structure, §5.5.2.
type ColorConfig struct {
	BitDepth                 int
	MonoChrome               bool
	NumPlanes                int
	ColorPrimaries           uint8
	TransferCharacteristics  uint8
	MatrixCoefficients       uint8
	ColorRange               bool
	SubsamplingX             bool
	SubsamplingY             bool
	ChromaSamplePosition     uint8
	SeparateUVDeltaQ         bool
}

// OperatingPoint holds one entry of the sequence header's operating
// points list, §5.5.1.
type OperatingPoint struct {
	IDC         uint16 // f(12)
	SeqLevelIdx uint8  // f(5)
	SeqTier     uint8  // f(1), present only if SeqLevelIdx > 7.
}

// SequenceHeader is the parsed sequence_header_obu() syntax structure,
// §5.5.
type SequenceHeader struct {
	SeqProfile                uint8
	StillPicture              bool
	ReducedStillPictureHeader bool

	OperatingPoints []OperatingPoint // Exactly one entry is supported; see Non-goals.

	FrameWidthBits       int
	FrameHeightBits      int
	MaxFrameWidth        uint32
	MaxFrameHeight       uint32

	FrameIDNumbersPresent bool
	DeltaFrameIDLength    int // delta_frame_id_length_minus2 + 2
	AdditionalFrameIDLength int // additional_frame_id_length_minus1 + 1

	Use128x128Superblock    bool
	EnableFilterIntra       bool
	EnableIntraEdgeFilter   bool
	EnableInterintraCompound bool
	EnableMaskedCompound    bool
	EnableWarpedMotion      bool
	EnableDualFilter        bool
	EnableOrderHint         bool
	EnableJntComp           bool
	EnableRefFrameMVs       bool

	SeqChooseScreenContentTools bool
	SeqForceScreenContentTools  uint8
	SeqChooseIntegerMV          bool
	SeqForceIntegerMV           uint8

	OrderHintBits int // 0 if EnableOrderHint is false.

	EnableSuperres   bool
	EnableCdef       bool
	EnableRestoration bool

	ColorConfig ColorConfig

	FilmGrainParamsPresent bool
}

// ParseSequenceHeader parses a sequence_header_obu() from payload, which
// must be exactly the OBU's payload bytes (header already stripped).
func ParseSequenceHeader(payload []byte) (*SequenceHeader, error) {
	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)
	sh := &SequenceHeader{}

	sh.SeqProfile = uint8(r.f(3))
	sh.StillPicture = r.flag()
	sh.ReducedStillPictureHeader = r.flag()

	if sh.ReducedStillPictureHeader {
		seqLevelIdx := uint8(r.f(5))
		sh.OperatingPoints = []OperatingPoint{{IDC: 0, SeqLevelIdx: seqLevelIdx}}
	} else {
		timingInfoPresent := r.flag()
		var decoderModelInfoPresent bool
		if timingInfoPresent {
			r.f(32) // num_units_in_display_tick
			r.f(32) // time_scale
			equalPictureInterval := r.flag()
			if equalPictureInterval {
				r.fail(ErrUnsupported, "num_ticks_per_picture_minus_1 (uvlc) not implemented")
			}
			decoderModelInfoPresent = r.flag()
			if decoderModelInfoPresent {
				r.fail(ErrUnsupported, "decoder_model_info not implemented")
			}
		}

		initialDisplayDelayPresent := r.flag()

		opCountMinus1 := int(r.f(5))
		if opCountMinus1 != 0 {
			r.fail(ErrUnsupported, "more than one operating point is not supported")
		}
		if r.err() != nil {
			return nil, r.err()
		}

		sh.OperatingPoints = make([]OperatingPoint, opCountMinus1+1)
		for i := range sh.OperatingPoints {
			op := &sh.OperatingPoints[i]
			op.IDC = uint16(r.f(12))
			op.SeqLevelIdx = uint8(r.f(5))
			if op.SeqLevelIdx > 7 {
				op.SeqTier = uint8(r.f(1))
			}
			if decoderModelInfoPresent {
				r.fail(ErrUnsupported, "decoder_model_present_for_this_op not implemented")
			}
			if initialDisplayDelayPresent {
				present := r.flag()
				if present {
					r.f(4) // initial_display_delay_minus_1
				}
			}
		}
	}
	if r.err() != nil {
		return nil, r.err()
	}

	frameWidthBitsMinus1 := int(r.f(4))
	frameHeightBitsMinus1 := int(r.f(4))
	sh.FrameWidthBits = frameWidthBitsMinus1 + 1
	sh.FrameHeightBits = frameHeightBitsMinus1 + 1
	sh.MaxFrameWidth = r.f(sh.FrameWidthBits) + 1
	sh.MaxFrameHeight = r.f(sh.FrameHeightBits) + 1

	if sh.ReducedStillPictureHeader {
		sh.FrameIDNumbersPresent = false
	} else {
		sh.FrameIDNumbersPresent = r.flag()
	}
	if sh.FrameIDNumbersPresent {
		sh.DeltaFrameIDLength = int(r.f(4)) + 2
		sh.AdditionalFrameIDLength = int(r.f(3)) + 1
	}

	sh.Use128x128Superblock = r.flag()
	sh.EnableFilterIntra = r.flag()
	sh.EnableIntraEdgeFilter = r.flag()

	if sh.ReducedStillPictureHeader {
		sh.SeqForceScreenContentTools = SelectScreenContentTools
		sh.SeqForceIntegerMV = SelectIntegerMV
	} else {
		sh.EnableInterintraCompound = r.flag()
		sh.EnableMaskedCompound = r.flag()
		sh.EnableWarpedMotion = r.flag()
		sh.EnableDualFilter = r.flag()
		sh.EnableOrderHint = r.flag()
		if sh.EnableOrderHint {
			sh.EnableJntComp = r.flag()
			sh.EnableRefFrameMVs = r.flag()
		}

		sh.SeqChooseScreenContentTools = r.flag()
		if sh.SeqChooseScreenContentTools {
			sh.SeqForceScreenContentTools = SelectScreenContentTools
		} else {
			sh.SeqForceScreenContentTools = uint8(r.f(1))
		}

		if sh.SeqForceScreenContentTools > 0 {
			sh.SeqChooseIntegerMV = r.flag()
			if sh.SeqChooseIntegerMV {
				sh.SeqForceIntegerMV = SelectIntegerMV
			} else {
				sh.SeqForceIntegerMV = uint8(r.f(1))
			}
		} else {
			sh.SeqForceIntegerMV = SelectIntegerMV
		}

		if sh.EnableOrderHint {
			sh.OrderHintBits = int(r.f(3)) + 1
		}
	}

	sh.EnableSuperres = r.flag()
	sh.EnableCdef = r.flag()
	sh.EnableRestoration = r.flag()

	if err := parseColorConfig(r, sh.SeqProfile, &sh.ColorConfig); err != nil {
		return nil, err
	}

	sh.FilmGrainParamsPresent = r.flag()

	if r.err() != nil {
		return nil, r.err()
	}

	if err := checkTrailingBits(br); err != nil {
		return nil, err
	}

	if Log != nil {
		Log.Debug("parsed sequence header", "profile", sh.SeqProfile, "width", sh.MaxFrameWidth, "height", sh.MaxFrameHeight, "bytes_read", br.BytesRead())
	}

	return sh, nil
}

// parseColorConfig parses color_config(), §5.5.2.
func parseColorConfig(r *fieldReader, seqProfile uint8, c *ColorConfig) error {
	highBitDepth := r.flag()
	if seqProfile == 2 && highBitDepth {
		twelveBit := r.flag()
		if twelveBit {
			c.BitDepth = 12
		} else {
			c.BitDepth = 10
		}
	} else {
		if highBitDepth {
			c.BitDepth = 10
		} else {
			c.BitDepth = 8
		}
	}

	if seqProfile == 1 {
		c.MonoChrome = false
	} else {
		c.MonoChrome = r.flag()
	}

	colorDescriptionPresent := r.flag()
	if colorDescriptionPresent {
		c.ColorPrimaries = uint8(r.f(8))
		c.TransferCharacteristics = uint8(r.f(8))
		c.MatrixCoefficients = uint8(r.f(8))
	} else {
		c.ColorPrimaries = 2 // CP_UNSPECIFIED
		c.TransferCharacteristics = 2 // TC_UNSPECIFIED
		c.MatrixCoefficients = 2 // MC_UNSPECIFIED
	}

	const (
		cpBT709    = 1
		tcSRGB     = 13
		mcIdentity = 0
	)

	if c.MonoChrome {
		c.ColorRange = r.flag()
		c.SubsamplingX = true
		c.SubsamplingY = true
		c.ChromaSamplePosition = 0
		c.NumPlanes = 1
		if r.err() != nil {
			return r.err()
		}
		return nil
	}

	c.NumPlanes = 3
	if c.ColorPrimaries == cpBT709 && c.TransferCharacteristics == tcSRGB && c.MatrixCoefficients == mcIdentity {
		c.ColorRange = true
		c.SubsamplingX = false
		c.SubsamplingY = false
	} else {
		c.ColorRange = r.flag()
		switch seqProfile {
		case 0:
			c.SubsamplingX, c.SubsamplingY = true, true
		case 1:
			c.SubsamplingX, c.SubsamplingY = false, false
		default:
			if c.BitDepth == 12 {
				c.SubsamplingX = r.flag()
				if c.SubsamplingX {
					c.SubsamplingY = r.flag()
				}
			} else {
				c.SubsamplingX, c.SubsamplingY = true, false
			}
		}
		if c.SubsamplingX && c.SubsamplingY {
			c.ChromaSamplePosition = uint8(r.f(2))
		}
	}

	c.SeparateUVDeltaQ = r.flag()

	return r.err()
}

// checkTrailingBits verifies the trailing_bits() syntax: a single 1 bit
// followed by zero or more 0 bits up to the next byte boundary.
func checkTrailingBits(br *bitreader.Reader) error {
	if br.ByteAligned() {
		// trailing_bits() still requires at least the 1 bit; AV1 headers
		// are always followed by at least this marker before byte
		// alignment, so a reader already aligned here would be a
		// malformed stream in practice. We tolerate it defensively.
		return nil
	}
	one, err := br.F(1)
	if err != nil {
		return errWrap(ErrMalformedSyntax, "trailing_bits: missing stop bit")
	}
	if one != 1 {
		return errWrap(ErrMalformedSyntax, "trailing_bits: stop bit not set")
	}
	if pad := br.BitsRemainingInByte(); pad > 0 {
		zeros, err := br.F(pad)
		if err != nil {
			return errWrap(ErrMalformedSyntax, "trailing_bits: truncated padding")
		}
		if zeros != 0 {
			return errWrap(ErrMalformedSyntax, "trailing_bits: nonzero padding bit")
		}
	}
	return nil
}
