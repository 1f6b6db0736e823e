/*
DESCRIPTION
  filmgrain.go parses film_grain_params(), §5.9.30.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// FilmGrainParams is the parsed film_grain_params() syntax structure.
type FilmGrainParams struct {
	ApplyGrain bool
	GrainSeed  uint16

	UpdateGrain  bool
	RefIdx       uint8 // Valid only if !UpdateGrain; this inspector does not replay load_grain_params().

	NumYPoints  uint8
	PointYValue [maxNumPoints]uint8
	PointYScale [maxNumPoints]uint8

	ChromaScalingFromLuma bool

	NumCbPoints  uint8
	PointCbValue [maxNumPoints]uint8
	PointCbScale [maxNumPoints]uint8

	NumCrPoints  uint8
	PointCrValue [maxNumPoints]uint8
	PointCrScale [maxNumPoints]uint8

	GrainScalingMinus8 uint8
	ArCoeffLag         uint8
	ArCoeffsY          []int16
	ArCoeffsCb         []int16
	ArCoeffsCr         []int16
	ArCoeffShiftMinus6 uint8
	GrainScaleShift    uint8

	CbMult     uint8
	CbLumaMult uint8
	CbOffset   uint16

	CrMult     uint8
	CrLumaMult uint8
	CrOffset   uint16

	OverlapFlag            bool
	ClipToRestrictedRange  bool
}

// parseFilmGrainParams parses film_grain_params() into
// fh.FilmGrainParams.
func parseFilmGrainParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	fg := &fh.FilmGrainParams

	if !seq.FilmGrainParamsPresent || (!fh.ShowFrame && !fh.ShowableFrame) {
		return nil
	}

	fg.ApplyGrain = r.flag()
	if !fg.ApplyGrain {
		return r.err()
	}

	fg.GrainSeed = uint16(r.f(16))

	if fh.FrameType == FrameInter {
		fg.UpdateGrain = r.flag()
	} else {
		fg.UpdateGrain = true
	}

	if !fg.UpdateGrain {
		fg.RefIdx = uint8(r.f(3))
		return r.err()
	}

	fg.NumYPoints = uint8(r.f(4))
	for i := 0; i < int(fg.NumYPoints); i++ {
		fg.PointYValue[i] = uint8(r.f(8))
		fg.PointYScale[i] = uint8(r.f(8))
	}

	if seq.ColorConfig.MonoChrome {
		fg.ChromaScalingFromLuma = false
	} else {
		fg.ChromaScalingFromLuma = r.flag()
	}

	if seq.ColorConfig.MonoChrome || fg.ChromaScalingFromLuma ||
		(seq.ColorConfig.SubsamplingX && seq.ColorConfig.SubsamplingY && fg.NumYPoints == 0) {
		fg.NumCbPoints = 0
		fg.NumCrPoints = 0
	} else {
		fg.NumCbPoints = uint8(r.f(4))
		for i := 0; i < int(fg.NumCbPoints); i++ {
			fg.PointCbValue[i] = uint8(r.f(8))
			fg.PointCbScale[i] = uint8(r.f(8))
		}
		fg.NumCrPoints = uint8(r.f(4))
		for i := 0; i < int(fg.NumCrPoints); i++ {
			fg.PointCrValue[i] = uint8(r.f(8))
			fg.PointCrScale[i] = uint8(r.f(8))
		}
	}

	fg.GrainScalingMinus8 = uint8(r.f(2))
	fg.ArCoeffLag = uint8(r.f(2))

	numPosLuma := 2 * int(fg.ArCoeffLag) * (int(fg.ArCoeffLag) + 1)
	numPosChroma := numPosLuma
	if fg.NumYPoints > 0 {
		numPosChroma = numPosLuma + 1
		fg.ArCoeffsY = make([]int16, numPosLuma)
		for i := range fg.ArCoeffsY {
			fg.ArCoeffsY[i] = int16(r.f(8)) - 128
		}
	}
	if fg.ChromaScalingFromLuma || fg.NumCbPoints > 0 {
		fg.ArCoeffsCb = make([]int16, numPosChroma)
		for i := range fg.ArCoeffsCb {
			fg.ArCoeffsCb[i] = int16(r.f(8)) - 128
		}
	}
	if fg.ChromaScalingFromLuma || fg.NumCrPoints > 0 {
		fg.ArCoeffsCr = make([]int16, numPosChroma)
		for i := range fg.ArCoeffsCr {
			fg.ArCoeffsCr[i] = int16(r.f(8)) - 128
		}
	}

	fg.ArCoeffShiftMinus6 = uint8(r.f(2))
	fg.GrainScaleShift = uint8(r.f(2))

	if fg.NumCbPoints > 0 {
		fg.CbMult = uint8(r.f(8))
		fg.CbLumaMult = uint8(r.f(8))
		fg.CbOffset = uint16(r.f(9))
	}
	if fg.NumCrPoints > 0 {
		fg.CrMult = uint8(r.f(8))
		fg.CrLumaMult = uint8(r.f(8))
		fg.CrOffset = uint16(r.f(9))
	}

	fg.OverlapFlag = r.flag()
	fg.ClipToRestrictedRange = r.flag()

	return r.err()
}
