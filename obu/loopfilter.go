/*
DESCRIPTION
  loopfilter.go parses loop_filter_params(), §5.9.11.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// totalRefsPerFrame is the ref_frame namespace size (INTRA_FRAME plus the
// seven inter reference names), distinct from NumRefFrames which counts
// reference-buffer slots.
const totalRefsPerFrame = 8

// LoopFilterParams is the parsed loop_filter_params() syntax structure.
type LoopFilterParams struct {
	Level       [4]uint8
	Sharpness   uint8
	DeltaEnabled bool
	DeltaUpdate  bool
	RefDeltas    [totalRefsPerFrame]int32
	ModeDeltas   [2]int32
}

// parseLoopFilterParams parses loop_filter_params() into
// fh.LoopFilterParams.
func parseLoopFilterParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	lf := &fh.LoopFilterParams

	if fh.CodedLossless || fh.AllowIntraBC {
		lf.Level = [4]uint8{0, 0, 0, 0}
		lf.RefDeltas[IntraFrame] = 1
		lf.RefDeltas[LastFrame] = 0
		lf.RefDeltas[Last2Frame] = 0
		lf.RefDeltas[Last3Frame] = 0
		lf.RefDeltas[BwdrefFrame] = 0
		lf.RefDeltas[GoldenFrame] = -1
		lf.RefDeltas[AltrefFrame] = -1
		lf.RefDeltas[Altref2Frame] = -1
		lf.ModeDeltas = [2]int32{0, 0}
		return nil
	}

	lf.Level[0] = uint8(r.f(6))
	lf.Level[1] = uint8(r.f(6))
	if seq.ColorConfig.NumPlanes > 1 {
		if lf.Level[0] != 0 || lf.Level[1] != 0 {
			lf.Level[2] = uint8(r.f(6))
			lf.Level[3] = uint8(r.f(6))
		}
	}
	lf.Sharpness = uint8(r.f(3))
	lf.DeltaEnabled = r.flag()
	if lf.DeltaEnabled {
		lf.DeltaUpdate = r.flag()
		if lf.DeltaUpdate {
			for i := 0; i < totalRefsPerFrame; i++ {
				if r.flag() {
					lf.RefDeltas[i] = r.su(7)
				}
			}
			for i := 0; i < 2; i++ {
				if r.flag() {
					lf.ModeDeltas[i] = r.su(7)
				}
			}
		}
	}

	return r.err()
}
