/*
DESCRIPTION
  tilelist.go parses the Large Scale Tile List OBU's tile_list_obu()
  syntax, §5.12. original_source/ has no tile-list handling (the Rust
  reference never exercises large-scale-tile streams), so this is
  grounded directly on the AV1 bitstream specification and expressed in
  the style of sequenceheader.go's flat field-by-field parsing.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import (
	"github.com/ausocean/av1inspect/bitreader"
)

// TileListEntry is one coded_tile_data record, tile_list_entry(), §5.12.1.
type TileListEntry struct {
	AnchorFrameIdx uint8
	AnchorTileRow  uint8
	AnchorTileCol  uint8
	TileDataSize   uint32 // tile_data_size_minus_1 + 1.
}

// TileList is the parsed tile_list_obu() syntax structure.
type TileList struct {
	OutputFrameWidthInTiles  int
	OutputFrameHeightInTiles int
	Entries                  []TileListEntry
}

// ParseTileList parses a tile_list_obu() from payload. The coded tile
// data bytes themselves are skipped; only the entry headers are
// recorded, matching the inspector's no-pixel-reconstruction scope.
func ParseTileList(payload []byte) (*TileList, error) {
	br := bitreader.New(byteSliceReader(payload))
	r := newFieldReader(br)

	tl := &TileList{}
	tl.OutputFrameWidthInTiles = int(r.f(8)) + 1
	tl.OutputFrameHeightInTiles = int(r.f(8)) + 1
	tileCount := int(r.f(16)) + 1

	if r.err() != nil {
		return nil, r.err()
	}

	tl.Entries = make([]TileListEntry, 0, mini(tileCount, 65536))
	for i := 0; i < tileCount; i++ {
		var e TileListEntry
		e.AnchorFrameIdx = uint8(r.f(8))
		e.AnchorTileRow = uint8(r.f(8))
		e.AnchorTileCol = uint8(r.f(8))
		e.TileDataSize = r.f(16) + 1
		if r.err() != nil {
			return nil, r.err()
		}
		tl.Entries = append(tl.Entries, e)

		for n := uint32(0); n < e.TileDataSize; n++ {
			r.f(8)
		}
		if r.err() != nil {
			return nil, errWrap(ErrMalformedSyntax, "tile_list_obu: truncated coded_tile_data")
		}
	}

	if Log != nil {
		Log.Debug("parsed tile list", "tiles", len(tl.Entries))
	}

	return tl, nil
}
