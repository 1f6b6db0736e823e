/*
DESCRIPTION
  quantization.go parses quantization_params(), §5.9.12.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// QuantizationParams is the parsed quantization_params() syntax
// structure.
type QuantizationParams struct {
	BaseQIdx uint8

	DeltaQYDc int32
	DeltaQUDc int32
	DeltaQUAc int32
	DeltaQVDc int32
	DeltaQVAc int32

	UsingQMatrix bool
	QMY          uint8
	QMU          uint8
	QMV          uint8
}

// readDeltaQ parses read_delta_q(), §5.9.12.
func readDeltaQ(r *fieldReader) int32 {
	if !r.flag() {
		return 0
	}
	return r.su(7)
}

// parseQuantizationParams parses quantization_params() into
// fh.QuantizationParams.
func parseQuantizationParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	q := &fh.QuantizationParams

	q.BaseQIdx = uint8(r.f(8))
	q.DeltaQYDc = readDeltaQ(r)

	if seq.ColorConfig.NumPlanes > 1 {
		diffUVDelta := false
		if seq.ColorConfig.SeparateUVDeltaQ {
			diffUVDelta = r.flag()
		}
		q.DeltaQUDc = readDeltaQ(r)
		q.DeltaQUAc = readDeltaQ(r)
		if diffUVDelta {
			q.DeltaQVDc = readDeltaQ(r)
			q.DeltaQVAc = readDeltaQ(r)
		} else {
			q.DeltaQVDc = q.DeltaQUDc
			q.DeltaQVAc = q.DeltaQUAc
		}
	}

	q.UsingQMatrix = r.flag()
	if q.UsingQMatrix {
		q.QMY = uint8(r.f(4))
		q.QMU = uint8(r.f(4))
		if !seq.ColorConfig.SeparateUVDeltaQ {
			q.QMV = q.QMU
		} else {
			q.QMV = uint8(r.f(4))
		}
	}

	return r.err()
}
