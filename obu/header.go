/*
DESCRIPTION
  header.go provides the OBU Framer: it reads a single OBU header (type,
  extension, size) from a byte stream and delimits payload boundaries
  using either an embedded LEB128 size or a caller-supplied remaining-size
  hint. Grounded on original_source/src/obu.rs's Obu struct and
  paese_av1_obu function.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// Package obu implements the AV1 OBU framer, the high-level syntax
// parsers for Sequence Header, Frame Header, Tile List and Metadata OBUs,
// and the reference-frame state machine those parsers update.
package obu

import (
	"fmt"
	"io"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/ausocean/av1inspect/bitreader"
)

// Log is the package-level logger. Callers assign a concrete
// logging.Logger before use; a nil Log is tolerated and simply discards
// log calls.
var Log logging.Logger

// Type is an OBU type tag, obu_type in the specification.
type Type uint8

// OBU types, Table 6.2.2.
const (
	TypeSequenceHeader       Type = 1
	TypeTemporalDelimiter    Type = 2
	TypeFrameHeader          Type = 3
	TypeTileGroup            Type = 4
	TypeMetadata             Type = 5
	TypeFrame                Type = 6
	TypeRedundantFrameHeader Type = 7
	TypeTileList             Type = 8
	TypePadding              Type = 15
)

func (t Type) String() string {
	switch t {
	case TypeSequenceHeader:
		return "SEQUENCE_HEADER"
	case TypeTemporalDelimiter:
		return "TEMPORAL_DELIMITER"
	case TypeFrameHeader:
		return "FRAME_HEADER"
	case TypeTileGroup:
		return "TILE_GROUP"
	case TypeMetadata:
		return "METADATA"
	case TypeFrame:
		return "FRAME"
	case TypeRedundantFrameHeader:
		return "REDUNDANT_FRAME_HEADER"
	case TypeTileList:
		return "TILE_LIST"
	case TypePadding:
		return "PADDING"
	default:
		return fmt.Sprintf("Reserved(%d)", uint8(t))
	}
}

// Header is the parsed preamble of one Open Bitstream Unit: its type,
// extension fields, and the byte lengths needed to locate its payload.
type Header struct {
	Type            Type
	ExtensionFlag   bool
	HasSizeField    bool
	TemporalID    uint8 // f(3), valid only if ExtensionFlag.
	SpatialID     uint8 // f(2), valid only if ExtensionFlag.
	PayloadSize   uint32
	HeaderLen     uint32 // Bytes consumed by the header itself (1, 2, or more with the LEB128 size).
}

// String renders the header the way original_source/src/obu.rs's Display
// impl for Obu does.
func (h Header) String() string {
	if h.ExtensionFlag {
		return fmt.Sprintf("%s T%dS%d size=%d+%d", h.Type, h.TemporalID, h.SpatialID, h.HeaderLen, h.PayloadSize)
	}
	return fmt.Sprintf("%s size=%d+%d", h.Type, h.HeaderLen, h.PayloadSize)
}

// byteReader is the minimal source ParseHeader needs: single-byte reads
// for the header fields and the LEB128 size.
type byteReader interface {
	io.ByteReader
}

// ParseHeader reads one OBU header from r. sz is the number of bytes
// remaining in the enclosing unit (a container frame, or
// math.MaxUint32 for an unbounded raw bitstream); it is used to derive
// the payload length when the header omits its own size field.
//
// ParseHeader fails with ErrMalformedHeader when the forbidden bit is
// set, when the LEB128 size does not fit in 32 bits, or when sz is too
// small to contain the header that was read.
func ParseHeader(r byteReader, sz uint32) (Header, error) {
	var h Header

	b1, err := r.ReadByte()
	if err != nil {
		return h, errors.Wrap(ErrIO, err.Error())
	}
	forbidden := (b1 >> 7) & 1
	if forbidden != 0 {
		return h, errors.Wrap(ErrMalformedHeader, "obu_forbidden_bit set")
	}
	h.Type = Type((b1 >> 3) & 0xf)
	h.ExtensionFlag = (b1>>2)&1 == 1
	h.HasSizeField = (b1>>1)&1 == 1
	// The trailing reserved bit (bit 0) is ignored.

	headerLen := uint32(1)
	if h.ExtensionFlag {
		if sz < 2 {
			return h, errors.Wrap(ErrMalformedHeader, "obu_extension_header exceeds remaining size")
		}
		b2, err := r.ReadByte()
		if err != nil {
			return h, errors.Wrap(ErrIO, err.Error())
		}
		h.TemporalID = (b2 >> 5) & 0x7
		h.SpatialID = (b2 >> 3) & 0x3
		headerLen++
	}

	if h.HasSizeField {
		size, n, err := bitreader.Leb128(r)
		if err != nil {
			return h, errors.Wrap(ErrMalformedHeader, "obu_size leb128: "+err.Error())
		}
		headerLen += uint32(n)
		if headerLen > sz {
			return h, errors.Wrap(ErrMalformedHeader, "obu_size leb128 exceeds remaining size")
		}
		h.PayloadSize = uint32(size)
	} else {
		if sz < headerLen {
			return h, errors.Wrap(ErrMalformedHeader, "obu header exceeds remaining size")
		}
		h.PayloadSize = sz - headerLen
	}

	h.HeaderLen = headerLen

	if Log != nil {
		Log.Debug("parsed obu header", "type", h.Type.String(), "header_len", h.HeaderLen, "payload_size", h.PayloadSize)
	}

	return h, nil
}
