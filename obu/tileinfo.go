/*
DESCRIPTION
  tileinfo.go parses tile_info(), §5.9.15: the uniform or explicit tile
  grid geometry of a frame. Grounded in structure on sequenceheader.go's
  field-by-field parsing style; the tile_log2 helper and geometry
  derivation follow original_source/src/av1.rs's TileInfo handling.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// TileInfo is the parsed tile_info() syntax structure together with its
// derived MI-grid boundaries.
type TileInfo struct {
	UniformTileSpacing bool

	TileColsLog2 int
	TileRowsLog2 int
	TileCols     int
	TileRows     int

	MiColStarts []int // TileCols+1 entries.
	MiRowStarts []int // TileRows+1 entries.

	ContextUpdateTileID int
	TileSizeBytes        int
}

// tileLog2 returns the smallest k such that (blkSize << k) >= target.
func tileLog2(blkSize, target int) int {
	k := 0
	for (blkSize << uint(k)) < target {
		k++
	}
	return k
}

// miCols, miRows derive the frame's mode-info grid dimensions from its
// luma sample dimensions, §5.9.15 / §6.8.1.
func miCols(frameWidth uint32) int {
	return 2 * int((frameWidth+7)>>3)
}

func miRows(frameHeight uint32) int {
	return 2 * int((frameHeight+7)>>3)
}

// parseTileInfo parses tile_info() into fh.TileInfo.
func parseTileInfo(r *fieldReader, seq *SequenceHeader, fh *FrameHeader) error {
	ti := &fh.TileInfo

	mCols := miCols(fh.FrameSize.Width)
	mRows := miRows(fh.FrameSize.Height)

	sbShift := 4
	if seq.Use128x128Superblock {
		sbShift = 5
	}
	sbSize := sbShift + 2
	sbCols := (mCols + (1<<uint(sbShift) - 1)) >> uint(sbShift)
	sbRows := (mRows + (1<<uint(sbShift) - 1)) >> uint(sbShift)

	maxTileWidthSb := MaxTileWidth >> uint(sbSize)
	maxTileAreaSb := MaxTileArea >> uint(2*sbSize)
	minLog2TileCols := tileLog2(maxTileWidthSb, sbCols)
	maxLog2TileCols := tileLog2(1, mini(sbCols, MaxTileCols))
	maxLog2TileRows := tileLog2(1, mini(sbRows, MaxTileRows))
	minLog2Tiles := maxi(minLog2TileCols, tileLog2(maxTileAreaSb, sbRows*sbCols))

	ti.UniformTileSpacing = r.flag()

	if ti.UniformTileSpacing {
		ti.TileColsLog2 = minLog2TileCols
		for ti.TileColsLog2 < maxLog2TileCols {
			if !r.flag() {
				break
			}
			ti.TileColsLog2++
		}
		tileWidthSb := (sbCols + (1 << uint(ti.TileColsLog2)) - 1) >> uint(ti.TileColsLog2)
		var starts []int
		for startSb := 0; startSb < sbCols; startSb += tileWidthSb {
			starts = append(starts, startSb<<uint(sbShift))
		}
		starts = append(starts, mCols)
		ti.MiColStarts = starts
		ti.TileCols = len(starts) - 1

		minLog2TileRows := maxi(minLog2Tiles-ti.TileColsLog2, 0)
		ti.TileRowsLog2 = minLog2TileRows
		for ti.TileRowsLog2 < maxLog2TileRows {
			if !r.flag() {
				break
			}
			ti.TileRowsLog2++
		}
		tileHeightSb := (sbRows + (1 << uint(ti.TileRowsLog2)) - 1) >> uint(ti.TileRowsLog2)
		var rstarts []int
		for startSb := 0; startSb < sbRows; startSb += tileHeightSb {
			rstarts = append(rstarts, startSb<<uint(sbShift))
		}
		rstarts = append(rstarts, mRows)
		ti.MiRowStarts = rstarts
		ti.TileRows = len(rstarts) - 1
	} else {
		widestTileSb := 0
		var starts []int
		startSb := 0
		for startSb < sbCols {
			starts = append(starts, startSb<<uint(sbShift))
			maxWidth := mini(sbCols-startSb, maxTileWidthSb)
			widthInSbsMinus1 := r.ns(uint32(maxWidth))
			sizeSb := int(widthInSbsMinus1) + 1
			widestTileSb = maxi(sizeSb, widestTileSb)
			startSb += sizeSb
		}
		starts = append(starts, mCols)
		ti.MiColStarts = starts
		ti.TileCols = len(starts) - 1
		ti.TileColsLog2 = ceilLog2(ti.TileCols)

		if minLog2Tiles > 0 {
			maxTileAreaSb = (sbRows * sbCols) >> uint(minLog2Tiles+1)
		} else {
			maxTileAreaSb = sbRows * sbCols
		}
		maxTileHeightSb := maxi(maxTileAreaSb/maxi(widestTileSb, 1), 1)

		var rstarts []int
		startSb = 0
		for startSb < sbRows {
			rstarts = append(rstarts, startSb<<uint(sbShift))
			maxHeight := mini(sbRows-startSb, maxTileHeightSb)
			heightInSbsMinus1 := r.ns(uint32(maxHeight))
			sizeSb := int(heightInSbsMinus1) + 1
			startSb += sizeSb
		}
		rstarts = append(rstarts, mRows)
		ti.MiRowStarts = rstarts
		ti.TileRows = len(rstarts) - 1
		ti.TileRowsLog2 = ceilLog2(ti.TileRows)
	}

	if ti.TileColsLog2 > 0 || ti.TileRowsLog2 > 0 {
		ti.ContextUpdateTileID = int(r.f(ti.TileRowsLog2 + ti.TileColsLog2))
		ti.TileSizeBytes = int(r.f(2)) + 1
	}

	if ti.TileCols > MaxTileCols || ti.TileRows > MaxTileRows {
		r.fail(ErrConformanceViolation, "tile grid exceeds MAX_TILE_COLS/MAX_TILE_ROWS")
	}

	return r.err()
}
