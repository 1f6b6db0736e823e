/*
DESCRIPTION
  looprestoration.go parses lr_params(), §5.9.20.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// restorationTileSizeMax is RESTORATION_TILESIZE_MAX, §5.9.20.
const restorationTileSizeMax = 256

// remapLrType maps the 2-bit lr_type coded value to a RestoreXxx
// constant, Remap_Lr_Type in the specification.
var remapLrType = [4]uint8{RestoreNone, RestoreSwitchable, RestoreWiener, RestoreSgrproj}

// LoopRestorationParams is the parsed lr_params() syntax structure.
type LoopRestorationParams struct {
	FrameRestorationType [3]uint8
	UsesLR               bool
	Size                 [3]int
}

// parseLRParams parses lr_params() into fh.LRParams.
func parseLRParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	lr := &fh.LRParams

	if fh.AllLossless || fh.AllowIntraBC || !seq.EnableRestoration {
		lr.FrameRestorationType = [3]uint8{RestoreNone, RestoreNone, RestoreNone}
		return nil
	}

	usesChromaLR := false
	for i := 0; i < seq.ColorConfig.NumPlanes; i++ {
		lrType := uint8(r.f(2))
		lr.FrameRestorationType[i] = remapLrType[lrType]
		if lr.FrameRestorationType[i] != RestoreNone {
			lr.UsesLR = true
			if i > 0 {
				usesChromaLR = true
			}
		}
	}

	if lr.UsesLR {
		var lrUnitShift int
		if seq.Use128x128Superblock {
			lrUnitShift = int(r.f(1)) + 1
		} else {
			lrUnitShift = int(r.f(1))
			if lrUnitShift != 0 {
				lrUnitShift += int(r.f(1))
			}
		}
		lr.Size[0] = restorationTileSizeMax >> uint(2-lrUnitShift)

		lrUVShift := 0
		if seq.ColorConfig.SubsamplingX && seq.ColorConfig.SubsamplingY && usesChromaLR {
			lrUVShift = int(r.f(1))
		}
		lr.Size[1] = lr.Size[0] >> uint(lrUVShift)
		lr.Size[2] = lr.Size[0] >> uint(lrUVShift)
	}

	return r.err()
}
