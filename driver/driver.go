/*
DESCRIPTION
  driver.go implements the Stream Driver: it pulls access units from a
  Demuxer, frames the OBUs inside each with the OBU Framer, dispatches
  each to the relevant Syntax Parser, applies the resulting state
  transitions to the Reference-Frame Manager, and emits one event per
  OBU plus one per Frame Header through a Sink. Grounded in structure on
  codec/h264/h264dec/parse.go's per-NAL-unit dispatch loop.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// Package driver implements the AV1 Stream Driver: the glue between a
// container Demuxer, the obu package's OBU Framer and Syntax Parsers,
// and a caller-supplied Sink that receives one event per OBU.
package driver

import (
	"bytes"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/av1inspect/obu"
)

// Log is the package-level logger; nil is tolerated.
var Log logging.Logger

// Demuxer is the narrow contract a container decoder exposes to the
// driver: the next AV1 access unit as a contiguous byte slice, its
// presentation timestamp, and the stream's codec identifier.
type Demuxer interface {
	// NextUnit returns the next access unit's bytes and presentation
	// timestamp, or io.EOF once the source is exhausted.
	NextUnit() (data []byte, pts int64, err error)

	// Codec identifies the elementary stream's codec (e.g. "av01").
	Codec() string
}

// OBUEvent reports one OBU's header geometry as the driver frames it.
type OBUEvent struct {
	Header obu.Header
	PTS    int64
}

// FrameEvent reports the result of parsing a Frame Header OBU.
type FrameEvent struct {
	PTS int64

	ShowExistingFrame bool
	FromDecodeIndex   int // Valid only if ShowExistingFrame: the decode index that produced the shown slot.
	SlotIndex         uint8

	DecodeIndex      int
	FrameType        obu.FrameType
	RefreshFlags     uint8
	Shown            bool
	PresentationIndex int // Valid only if Shown.
}

// MetadataEvent reports a parsed Metadata OBU.
type MetadataEvent struct {
	PTS      int64
	Metadata *obu.Metadata
}

// TileListEvent reports a parsed Tile List OBU.
type TileListEvent struct {
	PTS      int64
	TileList *obu.TileList
}

// Sink receives the driver's event stream. A nil method value is never
// called; callers implementing only some events can embed NopSink.
type Sink interface {
	OBU(OBUEvent)
	SequenceHeader(*obu.SequenceHeader)
	Frame(FrameEvent)
	Metadata(MetadataEvent)
	TileList(TileListEvent)
	Warning(err error, context string)
}

// NopSink implements Sink with no-op methods, for embedding by callers
// that only care about a subset of events.
type NopSink struct{}

func (NopSink) OBU(OBUEvent)                    {}
func (NopSink) SequenceHeader(*obu.SequenceHeader) {}
func (NopSink) Frame(FrameEvent)                {}
func (NopSink) Metadata(MetadataEvent)          {}
func (NopSink) TileList(TileListEvent)          {}
func (NopSink) Warning(error, string)           {}

// Driver holds the single long-lived Sequence Context a stream's OBUs
// are dispatched against.
type Driver struct {
	Seq *obu.Sequence

	// TemporalUnitCount counts Temporal Delimiter OBUs seen, the
	// stream-side frame boundary counter for the raw-bitstream path.
	TemporalUnitCount int
}

// New returns a Driver with a fresh, empty Sequence Context.
func New() *Driver {
	return &Driver{Seq: obu.NewSequence()}
}

// Run drives dm to exhaustion, dispatching every OBU in every access
// unit to sink. It returns nil on a clean end-of-stream, or a wrapped
// ErrIO if the demuxer itself failed (as opposed to a malformed OBU,
// which is reported to sink and does not stop the run).
func (d *Driver) Run(dm Demuxer, sink Sink) error {
	for {
		data, pts, err := dm.NextUnit()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(obu.ErrIO, err.Error())
		}
		d.dispatchUnit(data, pts, sink)
	}
}

// dispatchUnit frames and dispatches every OBU within one access unit's
// bytes. An OBU whose payload fails to parse is reported via
// sink.Warning and the driver advances past it using the recorded
// header+payload length, so later OBUs in the same unit are unaffected.
// An OBU whose header cannot be parsed, or whose payload runs past the
// end of the unit, is reported and the rest of that unit is abandoned.
// Later units are unaffected in both cases.
func (d *Driver) dispatchUnit(data []byte, pts int64, sink Sink) {
	off := 0
	for off < len(data) {
		remaining := uint32(len(data) - off)
		br := bytes.NewReader(data[off:])
		h, err := obu.ParseHeader(br, remaining)
		if err != nil {
			sink.Warning(err, "obu header")
			return // Cannot recover a boundary without a valid header.
		}

		payloadStart := off + int(h.HeaderLen)
		payloadEnd := payloadStart + int(h.PayloadSize)
		if payloadEnd > len(data) {
			sink.Warning(errors.Wrap(obu.ErrMalformedHeader, "obu payload exceeds access unit"), "obu payload")
			return
		}
		payload := data[payloadStart:payloadEnd]

		sink.OBU(OBUEvent{Header: h, PTS: pts})
		d.dispatchOBU(h, payload, pts, sink)

		off = payloadEnd
	}
}

// dispatchOBU applies the Stream Driver's per-type policy, §4.5.
func (d *Driver) dispatchOBU(h obu.Header, payload []byte, pts int64, sink Sink) {
	switch h.Type {
	case obu.TypeSequenceHeader:
		sh, err := obu.ParseSequenceHeader(payload)
		if err != nil {
			sink.Warning(err, "sequence header")
			return
		}
		d.Seq.Install(sh)
		sink.SequenceHeader(sh)

	case obu.TypeTemporalDelimiter:
		d.TemporalUnitCount++

	case obu.TypeFrameHeader, obu.TypeFrame:
		d.dispatchFrame(payload, pts, sink)

	case obu.TypeTileList:
		tl, err := obu.ParseTileList(payload)
		if err != nil {
			sink.Warning(err, "tile list")
			return
		}
		sink.TileList(TileListEvent{PTS: pts, TileList: tl})

	case obu.TypeMetadata:
		md, err := obu.ParseMetadata(payload)
		if err != nil {
			sink.Warning(err, "metadata")
			return
		}
		sink.Metadata(MetadataEvent{PTS: pts, Metadata: md})

	case obu.TypeTileGroup, obu.TypeRedundantFrameHeader, obu.TypePadding:
		// Skipped by byte length; already advanced by dispatchUnit.

	default:
		// Reserved OBU types are skipped the same way.
	}
}

// dispatchFrame implements the Frame Header / Frame dispatch policy: a
// missing Sequence Header demotes every following Frame Header to a
// reported warning rather than a hard error, per spec.md §7.
func (d *Driver) dispatchFrame(payload []byte, pts int64, sink Sink) {
	if d.Seq.Header == nil {
		sink.Warning(errors.New("frame header without a preceding sequence header"), "frame header")
		return
	}

	fh, err := obu.ParseFrameHeader(payload, d.Seq.Header, d.Seq.RFMan)
	if err != nil {
		sink.Warning(err, "frame header")
		return
	}

	if fh.ShowExistingFrame {
		slot := d.Seq.RFMan.Slots[fh.FrameToShowMapIdx]
		d.Seq.RFMan.OutputProcess()
		sink.Frame(FrameEvent{
			PTS:               pts,
			ShowExistingFrame: true,
			FromDecodeIndex:   slot.DecodeNumber,
			SlotIndex:         fh.FrameToShowMapIdx,
			FrameType:         fh.FrameType,
			Shown:             true,
			PresentationIndex: d.Seq.RFMan.PresentOrder - 1,
		})
		return
	}

	decodeIndex := d.Seq.RFMan.DecodeOrder
	shown := fh.ShowFrame
	presentIndex := -1
	if shown {
		d.Seq.RFMan.OutputProcess()
		presentIndex = d.Seq.RFMan.PresentOrder - 1
	}
	d.Seq.RFMan.UpdateProcess(fh.RefreshFrameFlags, fh.CurrentFrameID, fh.FrameType, fh.OrderHint, fh.GlobalMotionParams.Params)

	sink.Frame(FrameEvent{
		PTS:               pts,
		DecodeIndex:       decodeIndex,
		FrameType:         fh.FrameType,
		RefreshFlags:      fh.RefreshFrameFlags,
		Shown:             shown,
		PresentationIndex: presentIndex,
	})
}
