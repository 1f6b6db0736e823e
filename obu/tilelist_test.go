package obu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTileList(t *testing.T) {
	// output_frame_width_in_tiles_minus_1 = 1 (-> 2)
	// output_frame_height_in_tiles_minus_1 = 0 (-> 1)
	// tile_count_minus_1 = 0x0001 (-> 2 entries)
	// entry 0: anchor_frame_idx=0, anchor_tile_row=0, anchor_tile_col=0,
	//   tile_data_size_minus_1=0 (-> 1 byte of coded_tile_data follows)
	// entry 1: anchor_frame_idx=3, anchor_tile_row=1, anchor_tile_col=2,
	//   tile_data_size_minus_1=0 (-> 1 byte of coded_tile_data follows)
	payload := []byte{
		0x01, 0x00, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0xaa,
		0x03, 0x01, 0x02, 0x00, 0x00, 0xbb,
	}
	tl, err := ParseTileList(payload)
	if err != nil {
		t.Fatalf("ParseTileList: %v", err)
	}
	if tl.OutputFrameWidthInTiles != 2 || tl.OutputFrameHeightInTiles != 1 {
		t.Errorf("dims = %d x %d, want 2 x 1", tl.OutputFrameWidthInTiles, tl.OutputFrameHeightInTiles)
	}

	want := []TileListEntry{
		{AnchorFrameIdx: 0, AnchorTileRow: 0, AnchorTileCol: 0, TileDataSize: 1},
		{AnchorFrameIdx: 3, AnchorTileRow: 1, AnchorTileCol: 2, TileDataSize: 1},
	}
	if diff := cmp.Diff(want, tl.Entries); diff != "" {
		t.Errorf("Entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseTileListTruncated(t *testing.T) {
	payload := []byte{0x00, 0x00, 0x00, 0x05} // declares 6 entries, no entry bytes follow.
	_, err := ParseTileList(payload)
	if err == nil {
		t.Fatal("expected an error for a truncated tile list")
	}
}
