/*
DESCRIPTION
  deltaq.go parses delta_q_params() and delta_lf_params(), §5.9.17 and
  §5.9.18.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// DeltaQParams is the parsed delta_q_params() syntax structure.
type DeltaQParams struct {
	DeltaQPresent bool
	DeltaQRes     uint8
}

// DeltaLFParams is the parsed delta_lf_params() syntax structure.
type DeltaLFParams struct {
	DeltaLFPresent bool
	DeltaLFRes     uint8
	DeltaLFMulti   bool
}

// parseDeltaQParams parses delta_q_params() into fh.DeltaQParams.
func parseDeltaQParams(r *fieldReader, fh *FrameHeader) error {
	if fh.QuantizationParams.BaseQIdx > 0 {
		fh.DeltaQParams.DeltaQPresent = r.flag()
	}
	if fh.DeltaQParams.DeltaQPresent {
		fh.DeltaQParams.DeltaQRes = uint8(r.f(2))
	}
	return r.err()
}

// parseDeltaLFParams parses delta_lf_params() into fh.DeltaLFParams.
func parseDeltaLFParams(r *fieldReader, fh *FrameHeader) error {
	if fh.DeltaQParams.DeltaQPresent {
		if !fh.AllowIntraBC {
			fh.DeltaLFParams.DeltaLFPresent = r.flag()
		}
		if fh.DeltaLFParams.DeltaLFPresent {
			fh.DeltaLFParams.DeltaLFRes = uint8(r.f(2))
			fh.DeltaLFParams.DeltaLFMulti = r.flag()
		}
	}
	return r.err()
}
