/*
DESCRIPTION
  cdef.go parses cdef_params(), §5.9.19.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// maxCdefStrengths is 1 << cdef_bits at its widest, cdef_bits being f(2).
const maxCdefStrengths = 8

// CdefParams is the parsed cdef_params() syntax structure.
type CdefParams struct {
	Damping uint8
	Bits    uint8

	YPriStrength  [maxCdefStrengths]uint8
	YSecStrength  [maxCdefStrengths]uint8
	UVPriStrength [maxCdefStrengths]uint8
	UVSecStrength [maxCdefStrengths]uint8
}

// parseCdefParams parses cdef_params() into fh.CdefParams.
func parseCdefParams(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	c := &fh.CdefParams

	if fh.CodedLossless || fh.AllowIntraBC || !seq.EnableCdef {
		c.Damping = 3
		return nil
	}

	c.Damping = uint8(r.f(2)) + 3
	c.Bits = uint8(r.f(2))

	n := 1 << c.Bits
	for i := 0; i < n; i++ {
		c.YPriStrength[i] = uint8(r.f(4))
		c.YSecStrength[i] = uint8(r.f(2))
		if c.YSecStrength[i] == 3 {
			c.YSecStrength[i]++
		}
		if seq.ColorConfig.NumPlanes > 1 {
			c.UVPriStrength[i] = uint8(r.f(4))
			c.UVSecStrength[i] = uint8(r.f(2))
			if c.UVSecStrength[i] == 3 {
				c.UVSecStrength[i]++
			}
		}
	}

	return r.err()
}
