package driver

import (
	"io"
	"testing"

	"github.com/ausocean/av1inspect/obu"
)

// sliceDemuxer replays a fixed list of access units.
type sliceDemuxer struct {
	units [][]byte
	i     int
}

func (d *sliceDemuxer) NextUnit() ([]byte, int64, error) {
	if d.i >= len(d.units) {
		return nil, 0, io.EOF
	}
	u := d.units[d.i]
	d.i++
	return u, int64(d.i - 1), nil
}

func (d *sliceDemuxer) Codec() string { return "av01" }

// recordingSink captures every event for assertions.
type recordingSink struct {
	NopSink
	obus     []OBUEvent
	frames   []FrameEvent
	warnings []string
}

func (s *recordingSink) OBU(ev OBUEvent)     { s.obus = append(s.obus, ev) }
func (s *recordingSink) Frame(ev FrameEvent) { s.frames = append(s.frames, ev) }
func (s *recordingSink) Warning(err error, context string) {
	s.warnings = append(s.warnings, context)
}

func TestDriverRunTemporalDelimiterAndMetadata(t *testing.T) {
	// Temporal Delimiter (type=2, size field of zero, zero-length payload)
	// followed by a Metadata OBU (type=5, has_size_field=1) carrying an
	// HDR_CLL payload (metadata_type=1, max_cll=1, max_fall=1).
	td := []byte{0x12} // 0 0010 0 1 0, type=2 has_size=1
	td = append(td, 0x00) // leb128 size = 0

	metaPayload := []byte{0x01, 0x00, 0x01, 0x00, 0x01}
	md := []byte{0x2a} // 0 0101 0 1 0, type=5 has_size=1
	md = append(md, byte(len(metaPayload)))
	md = append(md, metaPayload...)

	unit := append(append([]byte{}, td...), md...)

	d := New()
	sink := &recordingSink{}
	if err := d.Run(&sliceDemuxer{units: [][]byte{unit}}, sink); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sink.obus) != 2 {
		t.Fatalf("len(obus) = %d, want 2", len(sink.obus))
	}
	if sink.obus[0].Header.Type != obu.TypeTemporalDelimiter {
		t.Errorf("obus[0].Type = %v, want TemporalDelimiter", sink.obus[0].Header.Type)
	}
	if sink.obus[1].Header.Type != obu.TypeMetadata {
		t.Errorf("obus[1].Type = %v, want Metadata", sink.obus[1].Header.Type)
	}
	if d.TemporalUnitCount != 1 {
		t.Errorf("TemporalUnitCount = %d, want 1", d.TemporalUnitCount)
	}
	if len(sink.warnings) != 0 {
		t.Errorf("warnings = %v, want none", sink.warnings)
	}
}

func TestDriverFrameHeaderWithoutSequenceHeaderWarns(t *testing.T) {
	// Frame Header (type=3, has_size=1) with an arbitrary nonempty payload,
	// but no Sequence Header was ever installed.
	fh := []byte{0x1a} // 0 0011 0 1 0, type=3 has_size=1
	fh = append(fh, 0x01, 0x00)

	d := New()
	sink := &recordingSink{}
	if err := d.Run(&sliceDemuxer{units: [][]byte{fh}}, sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.warnings) != 1 {
		t.Fatalf("len(warnings) = %d, want 1", len(sink.warnings))
	}
}

func TestDriverKeyFrameThenShowExisting(t *testing.T) {
	seq := &obu.SequenceHeader{
		SeqProfile:      0,
		FrameWidthBits:  7,
		FrameHeightBits: 7,
		MaxFrameWidth:   64,
		MaxFrameHeight:  64,
	}
	seq.ColorConfig = obu.ColorConfig{
		BitDepth:     8,
		NumPlanes:    3,
		SubsamplingX: true,
		SubsamplingY: true,
	}

	d := New()
	d.Seq.Install(seq)
	sink := &recordingSink{}

	// Frame Header OBU (type=3, has_size=1), a minimal lossless 64x64
	// Key frame with show_frame=1.
	keyUnit := []byte{0x1a, 0x03, 0x11, 0x00, 0x00}
	if err := d.Run(&sliceDemuxer{units: [][]byte{keyUnit}}, sink); err != nil {
		t.Fatalf("Run (key frame): %v", err)
	}
	if len(sink.warnings) != 0 {
		t.Fatalf("warnings = %v, want none", sink.warnings)
	}
	if d.Seq.RFMan.DecodeOrder != 1 {
		t.Errorf("DecodeOrder = %d, want 1", d.Seq.RFMan.DecodeOrder)
	}
	if d.Seq.RFMan.PresentOrder != 1 {
		t.Errorf("PresentOrder = %d, want 1", d.Seq.RFMan.PresentOrder)
	}
	for i, slot := range d.Seq.RFMan.Slots {
		if !slot.Valid {
			t.Errorf("slot[%d].Valid = false, want true after a refresh_frame_flags=0xff key frame", i)
		}
	}

	// Frame Header OBU: show_existing_frame=1, frame_to_show_map_idx=0.
	showExistingUnit := []byte{0x1a, 0x01, 0x80}
	if err := d.Run(&sliceDemuxer{units: [][]byte{showExistingUnit}}, sink); err != nil {
		t.Fatalf("Run (show existing): %v", err)
	}
	if len(sink.warnings) != 0 {
		t.Fatalf("warnings = %v, want none", sink.warnings)
	}
	if d.Seq.RFMan.PresentOrder != 2 {
		t.Errorf("PresentOrder = %d, want 2", d.Seq.RFMan.PresentOrder)
	}
	last := sink.frames[len(sink.frames)-1]
	if !last.ShowExistingFrame {
		t.Fatal("last frame event is not a show_existing_frame")
	}
	if last.FromDecodeIndex != 0 {
		t.Errorf("FromDecodeIndex = %d, want 0", last.FromDecodeIndex)
	}
	if last.PresentationIndex != 1 {
		t.Errorf("PresentationIndex = %d, want 1", last.PresentationIndex)
	}
}

func TestDriverMalformedOBUAbandonsUnit(t *testing.T) {
	d := New()
	sink := &recordingSink{}
	// Forbidden bit set: unrecoverable header.
	if err := d.Run(&sliceDemuxer{units: [][]byte{{0x80}}}, sink); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(sink.warnings) != 1 {
		t.Fatalf("len(warnings) = %d, want 1", len(sink.warnings))
	}
	if len(sink.obus) != 0 {
		t.Errorf("len(obus) = %d, want 0", len(sink.obus))
	}
}
