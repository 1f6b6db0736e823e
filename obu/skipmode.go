/*
DESCRIPTION
  skipmode.go parses skip_mode_params(), §5.9.22: the closest
  forward/backward reference search that decides whether skip mode is
  available for this frame. Grounded on refframe.go's GetRelativeDist.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// SkipModeParams is the parsed skip_mode_params() syntax structure.
type SkipModeParams struct {
	Allowed bool
	Present bool
	Frame   [2]int // ref_frame names of the skip-mode reference pair.
}

// parseSkipModeParams parses skip_mode_params() into fh.SkipModeParams.
func parseSkipModeParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader, rfman *RefFrameManager) error {
	sm := &fh.SkipModeParams

	skipModeAllowed := false

	if !fh.FrameIsIntra && fh.ReferenceSelect && seq.EnableOrderHint {
		forwardIdx, backwardIdx := -1, -1
		var forwardHint, backwardHint uint8

		dist := func(hint uint8) int {
			return GetRelativeDist(int(hint), int(fh.OrderHint), seq.EnableOrderHint, seq.OrderHintBits)
		}

		for i := 0; i < RefsPerFrame; i++ {
			refHint := rfman.Slots[fh.RefFrameIdx[i]].OrderHint
			d := dist(refHint)
			if d < 0 {
				if forwardIdx < 0 || GetRelativeDist(int(refHint), int(forwardHint), seq.EnableOrderHint, seq.OrderHintBits) > 0 {
					forwardIdx = i
					forwardHint = refHint
				}
			} else if d > 0 {
				if backwardIdx < 0 || GetRelativeDist(int(refHint), int(backwardHint), seq.EnableOrderHint, seq.OrderHintBits) < 0 {
					backwardIdx = i
					backwardHint = refHint
				}
			}
		}

		if forwardIdx < 0 {
			skipModeAllowed = false
		} else if backwardIdx >= 0 {
			skipModeAllowed = true
			sm.Frame[0] = LastFrame + mini(forwardIdx, backwardIdx)
			sm.Frame[1] = LastFrame + maxi(forwardIdx, backwardIdx)
		} else {
			secondForwardIdx := -1
			var secondForwardHint uint8
			for i := 0; i < RefsPerFrame; i++ {
				refHint := rfman.Slots[fh.RefFrameIdx[i]].OrderHint
				if GetRelativeDist(int(refHint), int(forwardHint), seq.EnableOrderHint, seq.OrderHintBits) < 0 {
					if secondForwardIdx < 0 || GetRelativeDist(int(refHint), int(secondForwardHint), seq.EnableOrderHint, seq.OrderHintBits) > 0 {
						secondForwardIdx = i
						secondForwardHint = refHint
					}
				}
			}
			if secondForwardIdx < 0 {
				skipModeAllowed = false
			} else {
				skipModeAllowed = true
				sm.Frame[0] = LastFrame + mini(forwardIdx, secondForwardIdx)
				sm.Frame[1] = LastFrame + maxi(forwardIdx, secondForwardIdx)
			}
		}
	}

	sm.Allowed = skipModeAllowed
	if skipModeAllowed {
		sm.Present = r.flag()
	}

	return r.err()
}
