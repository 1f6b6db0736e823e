/*
DESCRIPTION
  globalmotion.go parses global_motion_params(), §5.9.24, including the
  subexponential coding (§5.9.26) and inverse-recenter (§5.9.27) helpers
  it depends on. Grounded on refframe.go's persistence of SavedGMParams
  across frames via the reference-frame buffer.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// GlobalMotionParams is the parsed global_motion_params() syntax
// structure: one motion-model type and 6 transform coefficients per
// inter reference name (indices 1..7; index 0 is unused).
type GlobalMotionParams struct {
	GmType [RefsPerFrame + 1]GlobalMotionType
	Params [RefsPerFrame + 1][6]int32
}

// identityGMParams returns the 6-coefficient identity transform: all
// zero except the two diagonal entries, which hold 1<<WARPEDMODEL_PREC_BITS.
func identityGMParams() [6]int32 {
	var p [6]int32
	for i := 0; i < 6; i++ {
		if i%3 == 2 {
			p[i] = 1 << warpedModelPrecisionBits
		}
	}
	return p
}

// parseGlobalMotionParams parses global_motion_params() into
// fh.GlobalMotionParams, consulting rfman for the primary reference
// frame's previously saved parameters.
func parseGlobalMotionParams(r *fieldReader, fh *FrameHeader, rfman *RefFrameManager) error {
	gm := &fh.GlobalMotionParams

	for ref := LastFrame; ref <= AltrefFrame; ref++ {
		gm.GmType[ref] = GMIdentity
		gm.Params[ref] = identityGMParams()
	}

	if fh.FrameIsIntra {
		return nil
	}

	var prev [RefsPerFrame + 1][6]int32
	for i := range prev {
		prev[i] = identityGMParams()
	}
	if fh.PrimaryRefFrame != PrimaryRefNone {
		slot := rfman.Slots[fh.RefFrameIdx[fh.PrimaryRefFrame]]
		prev = slot.SavedGMParams
	}

	for ref := LastFrame; ref <= AltrefFrame; ref++ {
		typ := GMIdentity
		if r.flag() {
			if r.flag() {
				typ = GMRotZoom
			} else if r.flag() {
				typ = GMTranslation
			} else {
				typ = GMAffine
			}
		}
		gm.GmType[ref] = typ

		if typ >= GMRotZoom {
			readGlobalParam(r, fh, typ, ref, 2, prev, gm)
			readGlobalParam(r, fh, typ, ref, 3, prev, gm)
			if typ == GMAffine {
				readGlobalParam(r, fh, typ, ref, 4, prev, gm)
				readGlobalParam(r, fh, typ, ref, 5, prev, gm)
			} else {
				gm.Params[ref][4] = -gm.Params[ref][3]
				gm.Params[ref][5] = gm.Params[ref][2]
			}
		}
		if typ >= GMTranslation {
			readGlobalParam(r, fh, typ, ref, 0, prev, gm)
			readGlobalParam(r, fh, typ, ref, 1, prev, gm)
		}
	}

	return r.err()
}

// readGlobalParam parses read_global_param(), §5.9.25.
func readGlobalParam(r *fieldReader, fh *FrameHeader, typ GlobalMotionType, ref, idx int, prev [RefsPerFrame + 1][6]int32, gm *GlobalMotionParams) {
	absBits := gmAbsAlphaBits
	precBits := gmAlphaPrecisionBits

	if idx < 2 {
		if typ == GMTranslation {
			hp := 0
			if !fh.AllowHighPrecisionMV {
				hp = 1
			}
			absBits = gmAbsTransOnlyBits - hp
			precBits = gmTransOnlyPrecisionBits - hp
		} else {
			absBits = gmAbsTransBits
			precBits = gmTransPrecisionBits
		}
	}

	precDiff := warpedModelPrecisionBits - precBits
	round := 0
	sub := 0
	if idx%3 == 2 {
		round = 1 << warpedModelPrecisionBits
		sub = 1 << precBits
	}
	mx := 1 << absBits
	refValue := (int(prev[ref][idx]) >> precDiff) - sub

	v := decodeSignedSubexpWithRef(r, -mx, mx+1, refValue)
	gm.Params[ref][idx] = int32(v<<precDiff) + int32(round)
}

// decodeSignedSubexpWithRef parses decode_signed_subexp_with_ref(),
// §5.9.26.
func decodeSignedSubexpWithRef(r *fieldReader, low, high, ref int) int {
	x := decodeUnsignedSubexpWithRef(r, high-low, ref-low)
	return x + low
}

// decodeUnsignedSubexpWithRef parses decode_unsigned_subexp_with_ref(),
// §5.9.26.
func decodeUnsignedSubexpWithRef(r *fieldReader, mx, ref int) int {
	v := decodeSubexp(r, mx)
	if (ref << 1) <= mx {
		return inverseRecenter(ref, v)
	}
	return mx - 1 - inverseRecenter(mx-1-ref, v)
}

// decodeSubexp parses decode_subexp(), §5.9.26.
func decodeSubexp(r *fieldReader, numSyms int) int {
	i := 0
	mk := 0
	const k = 3
	for {
		b2 := k
		if i != 0 {
			b2 = k + i - 1
		}
		a := 1 << uint(b2)
		if numSyms <= mk+3*a {
			v := r.ns(uint32(numSyms - mk))
			return int(v) + mk
		}
		if r.flag() {
			i++
			mk += a
		} else {
			v := r.f(b2)
			return int(v) + mk
		}
	}
}

// inverseRecenter parses inverse_recenter(), §5.9.27.
func inverseRecenter(r, v int) int {
	switch {
	case v > 2*r:
		return v
	case v&1 != 0:
		return r - (v+1)>>1
	default:
		return r + v>>1
	}
}
