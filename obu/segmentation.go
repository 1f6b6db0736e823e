/*
DESCRIPTION
  segmentation.go parses segmentation_params(), §5.9.14.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// SegmentationParams is the parsed segmentation_params() syntax
// structure.
type SegmentationParams struct {
	Enabled           bool
	UpdateMap         bool
	TemporalUpdate    bool
	UpdateData        bool

	FeatureEnabled [MaxSegments][SegLvlMax]bool
	FeatureData    [MaxSegments][SegLvlMax]int32

	SegIDPreSkip    bool
	LastActiveSegID int

	// LosslessArray is filled in by computeLosslessFlags once
	// quantization_params() is also known.
	LosslessArray [MaxSegments]bool
}

// parseSegmentationParams parses segmentation_params() into
// fh.SegmentationParams.
func parseSegmentationParams(r *fieldReader, fh *FrameHeader) error {
	s := &fh.SegmentationParams

	s.Enabled = r.flag()
	if s.Enabled {
		if fh.PrimaryRefFrame == PrimaryRefNone {
			s.UpdateMap = true
			s.TemporalUpdate = false
			s.UpdateData = true
		} else {
			s.UpdateMap = r.flag()
			if s.UpdateMap {
				s.TemporalUpdate = r.flag()
			}
			s.UpdateData = r.flag()
		}
		if s.UpdateData {
			for i := 0; i < MaxSegments; i++ {
				for j := 0; j < SegLvlMax; j++ {
					enabled := r.flag()
					s.FeatureEnabled[i][j] = enabled
					var clipped int32
					if enabled {
						bits := segmentationFeatureBits[j]
						limit := int32(segmentationFeatureMax[j])
						if segmentationFeatureSigned[j] {
							v := r.su(bits + 1)
							clipped = clampi32(v, -limit, limit)
						} else {
							v := int32(r.f(bits))
							clipped = clampi32(v, 0, limit)
						}
					}
					s.FeatureData[i][j] = clipped
				}
			}
		}
	}

	if r.err() != nil {
		return r.err()
	}

	for i := 0; i < MaxSegments; i++ {
		for j := 0; j < SegLvlMax; j++ {
			if s.FeatureEnabled[i][j] {
				s.LastActiveSegID = i
				if j >= SegLvlRefFrame {
					s.SegIDPreSkip = true
				}
			}
		}
	}

	return nil
}

func clampi32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
