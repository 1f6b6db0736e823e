/*
DESCRIPTION
  constants.go collects the numeric constants the AV1 uncompressed header
  syntax and reference-frame state machine depend on.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// NumRefFrames is the number of slots in the reference-frame buffer.
const NumRefFrames = 8

// RefsPerFrame is the number of reference frame slots a single frame may
// point at (ref_frame_idx has this many entries).
const RefsPerFrame = 7

// Reference frame name constants (the "ref_frame" namespace, not slot
// indices into the reference-frame buffer).
const (
	IntraFrame = 0
	LastFrame  = 1
	Last2Frame = 2
	Last3Frame = 3
	GoldenFrame = 4
	BwdrefFrame = 5
	Altref2Frame = 6
	AltrefFrame = 7
)

// Sentinel values; see spec.md §9 "Design Notes".
const (
	PrimaryRefNone             = 7
	Switchable                 = 4
	SelectScreenContentTools   = 2
	SelectIntegerMV            = 2
)

// FrameType identifies a decoded frame's type, frame_type in the
// specification.
type FrameType uint8

const (
	FrameKey FrameType = iota
	FrameInter
	FrameIntraOnly
	FrameSwitch
)

func (t FrameType) String() string {
	switch t {
	case FrameKey:
		return "KEY"
	case FrameInter:
		return "INTER"
	case FrameIntraOnly:
		return "INTRA_ONLY"
	case FrameSwitch:
		return "SWITCH"
	default:
		return "UNKNOWN"
	}
}

// Tile size limits, §4.3.
const (
	MaxTileWidth = 4096
	MaxTileArea  = 4096 * 2304
	MaxTileRows  = 64
	MaxTileCols  = 64
)

// InterpolationFilter values.
const (
	InterpEightTap = iota
	InterpEightTapSmooth
	InterpEightTapSharp
	InterpBilinear
	InterpSwitchable = Switchable
)

// GlobalMotionType classifies a reference frame's global motion model.
type GlobalMotionType uint8

const (
	GMIdentity GlobalMotionType = iota
	GMTranslation
	GMRotZoom
	GMAffine
)

// Global motion parameter precision constants, §5.9.24.
const (
	warpedModelPrecisionBits = 16
	gmAbsTransBits           = 12
	gmAbsTransOnlyBits       = 9
	gmAbsAlphaBits           = 12
	gmAlphaPrecisionBits     = 15
	gmTransPrecisionBits     = 6
	gmTransOnlyPrecisionBits = 3
)

// Film grain limits.
const maxNumPoints = 14

// Segmentation feature namespace, §6.8.13.
const (
	SegLvlAltQ = iota
	SegLvlAltLFYV
	SegLvlAltLFYH
	SegLvlAltLFU
	SegLvlAltLFV
	SegLvlRefFrame
	SegLvlSkip
	SegLvlGlobalMV
	SegLvlMax
)

// MaxSegments is the number of segmentation map entries, §3.
const MaxSegments = 8

// segmentationFeatureBits gives each feature's coded bit width and
// segmentationFeatureSigned whether it is su(n) (true) or f(n) (false),
// §5.9.14 Table.
var segmentationFeatureBits = [SegLvlMax]int{8, 6, 6, 6, 6, 3, 0, 0}
var segmentationFeatureSigned = [SegLvlMax]bool{true, true, true, true, true, false, false, false}
var segmentationFeatureMax = [SegLvlMax]int{255, 63, 63, 63, 63, 7, 0, 0}

// Quantization matrix / delta-q limits, §5.9.12.
const (
	minQindex = 0
	maxQindex = 255
)

// TxMode values, §6.8.21.
const (
	TxModeOnly4x4 = iota
	TxModeLargest
	TxModeSelect
)

// Restoration types, §6.10.15.
const (
	RestoreNone = iota
	RestoreWiener
	RestoreSgrproj
	RestoreSwitchable
)
