/*
DESCRIPTION
  frameheader.go parses the AV1 Frame Header OBU's uncompressed_header()
  syntax (section 5.9.2 of the AV1 specification), dispatching to the
  sub-syntax parsers in tileinfo.go, quantization.go, segmentation.go,
  deltaq.go, loopfilter.go, cdef.go, looprestoration.go, globalmotion.go,
  filmgrain.go and skipmode.go in spec order. Grounded in style on
  codec/h264/h264dec/slice.go's NewSliceContext.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import (
	"errors"

	"github.com/ausocean/av1inspect/bitreader"
)

// FrameSize holds frame_size() and superres_params() results, §5.9.5 /
// §5.9.7.
type FrameSize struct {
	Width         uint32
	Height        uint32
	UpscaledWidth uint32
	UseSuperres   bool
	SuperresDenom uint8
}

// RenderSize holds render_size(), §5.9.6.
type RenderSize struct {
	Width  uint32
	Height uint32
}

// FrameHeader is the parsed uncompressed_header() syntax structure.
type FrameHeader struct {
	ShowExistingFrame     bool
	FrameToShowMapIdx     uint8
	DisplayFrameID        uint32 // Only meaningful if the sequence uses frame ids.

	FrameType      FrameType
	FrameIsIntra   bool
	ShowFrame      bool
	ShowableFrame  bool

	ErrorResilientMode bool
	DisableCDFUpdate   bool

	AllowScreenContentTools bool
	ForceIntegerMV          bool

	CurrentFrameID uint32

	FrameSizeOverrideFlag bool
	OrderHint             uint8
	PrimaryRefFrame       uint8

	RefreshFrameFlags uint8
	RefOrderHint      [NumRefFrames]uint8

	FrameSize  FrameSize
	RenderSize RenderSize

	AllowIntraBC bool

	RefFrameIdx [RefsPerFrame]int8

	AllowHighPrecisionMV bool
	InterpolationFilter  uint8
	IsMotionModeSwitchable bool
	UseRefFrameMVs         bool

	DisableFrameEndUpdateCDF bool

	OrderHints [RefsPerFrame + 1]uint8 // Indexed by ref_frame name.

	TileInfo TileInfo

	QuantizationParams QuantizationParams
	SegmentationParams SegmentationParams
	DeltaQParams       DeltaQParams
	DeltaLFParams      DeltaLFParams

	CodedLossless bool
	AllLossless   bool

	LoopFilterParams LoopFilterParams
	CdefParams       CdefParams
	LRParams         LoopRestorationParams

	TxMode uint8

	ReferenceSelect bool
	SkipModeParams  SkipModeParams

	AllowWarpedMotion bool
	ReducedTxSet      bool

	GlobalMotionParams GlobalMotionParams

	FilmGrainParams FilmGrainParams
}

// frameIsIntra reports whether t is Key or IntraOnly.
func frameIsIntra(t FrameType) bool {
	return t == FrameKey || t == FrameIntraOnly
}

// ParseFrameHeader parses a frame_header_obu() (or the frame header
// portion of a frame_obu()) from payload against seq and the reference
// frame manager rfman. It mutates rfman per the Key-frame reset and
// mark-ref-frames rules but does not call UpdateProcess/OutputProcess:
// those are applied by the Stream Driver after a full, successful parse
// (and, for OutputProcess, immediately once ShowFrame/ShowExistingFrame
// is known).
func ParseFrameHeader(payload []byte, seq *SequenceHeader, rfman *RefFrameManager) (*FrameHeader, error) {
	// The Stream Driver demotes this case to a reported warning before it
	// ever reaches here (a missing Sequence Header is not a bitstream
	// conformance problem); this guard only protects direct callers and
	// carries no error-kind classification of its own.
	if seq == nil {
		return nil, errors.New("obu: ParseFrameHeader called without a sequence header")
	}

	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)
	fh := &FrameHeader{}

	idLen := 0
	if seq.FrameIDNumbersPresent {
		idLen = seq.AdditionalFrameIDLength + seq.DeltaFrameIDLength
	}

	if !seq.ReducedStillPictureHeader {
		fh.ShowExistingFrame = r.flag()
	}

	if fh.ShowExistingFrame {
		fh.FrameToShowMapIdx = uint8(r.f(3))
		if r.err() != nil {
			return nil, r.err()
		}
		if seq.FrameIDNumbersPresent {
			fh.DisplayFrameID = r.f(idLen)
		}
		slot := rfman.Slots[fh.FrameToShowMapIdx]
		fh.FrameType = slot.FrameType
		if fh.FrameType == FrameKey {
			fh.RefreshFrameFlags = 0xff
		}
		if r.err() != nil {
			return nil, r.err()
		}
		return fh, nil
	}

	if seq.ReducedStillPictureHeader {
		fh.FrameType = FrameKey
		fh.ShowFrame = true
	} else {
		fh.FrameType = FrameType(r.f(2))
		fh.ShowFrame = r.flag()
		if fh.ShowFrame {
			fh.ShowableFrame = fh.FrameType != FrameKey
		} else {
			fh.ShowableFrame = r.flag()
		}
	}
	fh.FrameIsIntra = frameIsIntra(fh.FrameType)

	if fh.FrameType == FrameSwitch || (fh.FrameType == FrameKey && fh.ShowFrame) {
		fh.ErrorResilientMode = true
	} else {
		fh.ErrorResilientMode = r.flag()
	}

	if fh.FrameType == FrameKey && fh.ShowFrame {
		rfman.Reset()
		fh.RefreshFrameFlags = 0xff
	}

	fh.DisableCDFUpdate = r.flag()

	if seq.SeqForceScreenContentTools == SelectScreenContentTools {
		fh.AllowScreenContentTools = r.flag()
	} else {
		fh.AllowScreenContentTools = seq.SeqForceScreenContentTools != 0
	}

	if fh.AllowScreenContentTools {
		if seq.SeqForceIntegerMV == SelectIntegerMV {
			fh.ForceIntegerMV = r.flag()
		} else {
			fh.ForceIntegerMV = seq.SeqForceIntegerMV != 0
		}
	}
	if fh.FrameIsIntra {
		fh.ForceIntegerMV = true
	}

	if seq.FrameIDNumbersPresent {
		fh.CurrentFrameID = r.f(idLen)
		rfman.MarkRefFrames(idLen, seq.DeltaFrameIDLength, fh.CurrentFrameID)
	}

	if seq.ReducedStillPictureHeader || fh.ErrorResilientMode {
		fh.FrameSizeOverrideFlag = false
	} else if fh.FrameType == FrameSwitch {
		fh.FrameSizeOverrideFlag = true
	} else {
		fh.FrameSizeOverrideFlag = r.flag()
	}

	fh.OrderHint = uint8(r.f(maxi(seq.OrderHintBits, 0)))
	if !seq.EnableOrderHint {
		fh.OrderHint = 0
	}

	if fh.FrameIsIntra || fh.ErrorResilientMode {
		fh.PrimaryRefFrame = PrimaryRefNone
	} else {
		fh.PrimaryRefFrame = uint8(r.f(3))
	}

	// decoder_model_info / buffer_removal_time is never present in this
	// implementation; timing_info_present_flag handling already fails
	// Unsupported in ParseSequenceHeader if it would require it here.

	if fh.FrameType == FrameSwitch || (fh.FrameType == FrameKey && fh.ShowFrame) {
		fh.RefreshFrameFlags = 0xff
	} else {
		fh.RefreshFrameFlags = uint8(r.f(8))
	}

	if (!fh.FrameIsIntra || fh.RefreshFrameFlags != 0xff) && fh.ErrorResilientMode && seq.EnableOrderHint {
		for i := 0; i < NumRefFrames; i++ {
			fh.RefOrderHint[i] = uint8(r.f(seq.OrderHintBits))
		}
	}

	if fh.FrameIsIntra {
		if err := parseFrameSize(r, seq, fh); err != nil {
			return nil, err
		}
		if err := parseRenderSize(r, fh); err != nil {
			return nil, err
		}
		if fh.AllowScreenContentTools && fh.FrameSize.UpscaledWidth == fh.FrameSize.Width {
			fh.AllowIntraBC = r.flag()
		}
	} else {
		frameRefsShortSignaling := false
		if seq.EnableOrderHint {
			frameRefsShortSignaling = r.flag()
			if frameRefsShortSignaling {
				r.fail(ErrUnsupported, "frame_refs_short_signaling / set_frame_refs is not implemented")
				return nil, r.err()
			}
		}
		for i := 0; i < RefsPerFrame; i++ {
			if !frameRefsShortSignaling {
				fh.RefFrameIdx[i] = int8(r.f(3))
			}
			if seq.FrameIDNumbersPresent {
				deltaFrameIDMinus1 := r.f(seq.DeltaFrameIDLength)
				deltaFrameID := deltaFrameIDMinus1 + 1
				mod := uint32(1) << uint(idLen)
				expectedFrameID := uint16((fh.CurrentFrameID + mod - deltaFrameID) % mod)
				if got := rfman.Slots[fh.RefFrameIdx[i]].FrameID; got != expectedFrameID {
					r.fail(ErrConformanceViolation, "ref_frame_idx expected frame id mismatch")
				}
			}
		}

		if fh.FrameSizeOverrideFlag && !fh.ErrorResilientMode {
			r.fail(ErrUnsupported, "frame_size_with_refs is not implemented")
			return nil, r.err()
		}
		if err := parseFrameSize(r, seq, fh); err != nil {
			return nil, err
		}
		if err := parseRenderSize(r, fh); err != nil {
			return nil, err
		}

		if fh.ForceIntegerMV {
			fh.AllowHighPrecisionMV = false
		} else {
			fh.AllowHighPrecisionMV = r.flag()
		}

		if err := parseInterpolationFilter(r, fh); err != nil {
			return nil, err
		}
		fh.IsMotionModeSwitchable = r.flag()

		if fh.ErrorResilientMode || !seq.EnableRefFrameMVs {
			fh.UseRefFrameMVs = false
		} else {
			fh.UseRefFrameMVs = r.flag()
		}

		for j := 0; j < RefsPerFrame; j++ {
			refFrame := LastFrame + j
			hint := rfman.Slots[fh.RefFrameIdx[j]].OrderHint
			fh.OrderHints[refFrame] = hint
		}
	}

	if seq.ReducedStillPictureHeader || fh.DisableCDFUpdate {
		fh.DisableFrameEndUpdateCDF = true
	} else {
		fh.DisableFrameEndUpdateCDF = r.flag()
	}

	if r.err() != nil {
		return nil, r.err()
	}

	// init_non_coeff_cdfs / setup_past_independence are CDF/state-only
	// processes with no further bit consumption.

	if err := parseTileInfo(r, seq, fh); err != nil {
		return nil, err
	}
	if err := parseQuantizationParams(r, seq, fh); err != nil {
		return nil, err
	}
	if err := parseSegmentationParams(r, fh); err != nil {
		return nil, err
	}
	if err := parseDeltaQParams(r, fh); err != nil {
		return nil, err
	}
	if err := parseDeltaLFParams(r, fh); err != nil {
		return nil, err
	}

	computeLosslessFlags(fh)

	if err := parseLoopFilterParams(r, seq, fh); err != nil {
		return nil, err
	}
	if err := parseCdefParams(r, seq, fh); err != nil {
		return nil, err
	}
	if err := parseLRParams(r, seq, fh); err != nil {
		return nil, err
	}
	if err := parseTxMode(r, fh); err != nil {
		return nil, err
	}
	if err := parseFrameReferenceMode(r, fh); err != nil {
		return nil, err
	}
	if err := parseSkipModeParams(r, seq, fh, rfman); err != nil {
		return nil, err
	}

	if fh.FrameIsIntra || fh.ErrorResilientMode || !seq.EnableWarpedMotion {
		fh.AllowWarpedMotion = false
	} else {
		fh.AllowWarpedMotion = r.flag()
	}

	fh.ReducedTxSet = r.flag()

	if err := parseGlobalMotionParams(r, fh, rfman); err != nil {
		return nil, err
	}
	if err := parseFilmGrainParams(r, seq, fh); err != nil {
		return nil, err
	}

	if r.err() != nil {
		return nil, r.err()
	}

	if Log != nil {
		Log.Debug("parsed frame header", "type", fh.FrameType.String(), "show_frame", fh.ShowFrame, "order_hint", fh.OrderHint)
	}

	return fh, nil
}

// parseFrameSize parses frame_size(), §5.9.5, including superres_params()
// when applicable.
func parseFrameSize(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	if fh.FrameSizeOverrideFlag {
		fh.FrameSize.Width = r.f(seq.FrameWidthBits) + 1
		fh.FrameSize.Height = r.f(seq.FrameHeightBits) + 1
	} else {
		fh.FrameSize.Width = seq.MaxFrameWidth
		fh.FrameSize.Height = seq.MaxFrameHeight
	}
	return parseSuperresParams(r, seq, fh)
}

// parseSuperresParams parses superres_params(), §5.9.7.
func parseSuperresParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	const superresNum = 8
	const superresDenomMin = 9
	const superresDenomBits = 3

	useSuperres := false
	if seq.EnableSuperres {
		useSuperres = r.flag()
	}
	fh.FrameSize.UseSuperres = useSuperres
	if useSuperres {
		fh.FrameSize.SuperresDenom = uint8(r.f(superresDenomBits)) + superresDenomMin
	} else {
		fh.FrameSize.SuperresDenom = superresNum
	}
	fh.FrameSize.UpscaledWidth = fh.FrameSize.Width
	fh.FrameSize.Width = (fh.FrameSize.UpscaledWidth*superresNum + fh.FrameSize.SuperresDenom/2) / fh.FrameSize.SuperresDenom
	return r.err()
}

// parseRenderSize parses render_size(), §5.9.6.
func parseRenderSize(r *fieldReader, fh *FrameHeader) error {
	renderAndFrameSizeDifferent := r.flag()
	if renderAndFrameSizeDifferent {
		fh.RenderSize.Width = r.f(16) + 1
		fh.RenderSize.Height = r.f(16) + 1
	} else {
		fh.RenderSize.Width = fh.FrameSize.UpscaledWidth
		fh.RenderSize.Height = fh.FrameSize.Height
	}
	return r.err()
}

// parseInterpolationFilter parses read_interpolation_filter(), §5.9.10.
func parseInterpolationFilter(r *fieldReader, fh *FrameHeader) error {
	isFilterSwitchable := r.flag()
	if isFilterSwitchable {
		fh.InterpolationFilter = Switchable
	} else {
		fh.InterpolationFilter = uint8(r.f(2))
	}
	return r.err()
}

// computeLosslessFlags derives CodedLossless and AllLossless once
// quantization and segmentation params are known, §7.12.3 semantics
// summarized in spec.md §3.
func computeLosslessFlags(fh *FrameHeader) {
	allLossless := true
	for segID := 0; segID < MaxSegments; segID++ {
		qidx := getQIndex(fh, segID)
		lossless := qidx == 0 &&
			fh.QuantizationParams.DeltaQYDc == 0 &&
			fh.QuantizationParams.DeltaQUAc == 0 &&
			fh.QuantizationParams.DeltaQUDc == 0 &&
			fh.QuantizationParams.DeltaQVAc == 0 &&
			fh.QuantizationParams.DeltaQVDc == 0
		fh.SegmentationParams.LosslessArray[segID] = lossless
		if !lossless {
			allLossless = false
		}
	}
	fh.CodedLossless = allLossless
	fh.AllLossless = allLossless && fh.FrameSize.Width == fh.FrameSize.UpscaledWidth
}

// getQIndex implements get_qindex(), §7.12.2, for the ignoreDeltaQ=true,
// current-segment case used to derive losslessness above.
func getQIndex(fh *FrameHeader, segmentID int) int {
	base := int(fh.QuantizationParams.BaseQIdx)
	if fh.SegmentationParams.Enabled && fh.SegmentationParams.FeatureEnabled[segmentID][SegLvlAltQ] {
		data := fh.SegmentationParams.FeatureData[segmentID][SegLvlAltQ]
		qidx := base + int(data)
		return clampi(qidx, minQindex, maxQindex)
	}
	return base
}

// parseTxMode parses read_tx_mode(), §5.9.21.
func parseTxMode(r *fieldReader, fh *FrameHeader) error {
	if fh.CodedLossless {
		fh.TxMode = TxModeOnly4x4
	} else if r.flag() {
		fh.TxMode = TxModeSelect
	} else {
		fh.TxMode = TxModeLargest
	}
	return r.err()
}

// parseFrameReferenceMode parses frame_reference_mode(), §5.9.22.
func parseFrameReferenceMode(r *fieldReader, fh *FrameHeader) error {
	if fh.FrameIsIntra {
		fh.ReferenceSelect = false
	} else {
		fh.ReferenceSelect = r.flag()
	}
	return r.err()
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
