/*
DESCRIPTION
  ivf.go implements an IVF demultiplexer satisfying driver.Demuxer.
  Grounded on original_source/src/ivf.rs's parse_ivf_header and
  parse_ivf_frame; adapted to a streaming io.Reader and the driver's
  NextUnit contract instead of a one-shot parse function.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// See https://wiki.multimedia.cx/index.php/IVF for the format this
// package decodes.

// Package ivf provides a minimal IVF demultiplexer.
package ivf

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// IVF is little-endian throughout.
var order = binary.LittleEndian

const (
	headerSize      = 32
	frameHeaderSize = 12 // 4-byte size + 8-byte pts.
)

// Signature is the IVF file magic, "DKIF".
var Signature = [4]byte{'D', 'K', 'I', 'F'}

// Header is the parsed 32-byte IVF file header.
type Header struct {
	FourCC     [4]byte
	Width      uint16
	Height     uint16
	FrameRate  uint16
	TimeScale  uint16
	FrameCount uint32
}

// Demuxer reads frames from an IVF stream, one frame per NextUnit call.
type Demuxer struct {
	r      io.Reader
	Header Header
}

// Open reads and validates the 32-byte IVF header from r, returning a
// Demuxer positioned at the first frame.
func Open(r io.Reader) (*Demuxer, error) {
	var buf [headerSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(err, "ivf: reading header")
	}

	var sig [4]byte
	copy(sig[:], buf[0:4])
	if sig != Signature {
		return nil, errors.Errorf("ivf: bad signature %x", sig)
	}
	version := order.Uint16(buf[4:6])
	if version != 0 {
		return nil, errors.Errorf("ivf: unsupported version %d", version)
	}
	hdrLen := order.Uint16(buf[6:8])
	if int(hdrLen) != headerSize {
		return nil, errors.Errorf("ivf: unexpected header length %d", hdrLen)
	}

	h := Header{
		Width:      order.Uint16(buf[12:14]),
		Height:     order.Uint16(buf[14:16]),
		FrameRate:  order.Uint16(buf[16:18]),
		TimeScale:  order.Uint16(buf[18:20]),
		FrameCount: order.Uint32(buf[20:24]),
	}
	copy(h.FourCC[:], buf[8:12])

	return &Demuxer{r: r, Header: h}, nil
}

// NextUnit implements driver.Demuxer.
func (d *Demuxer) NextUnit() ([]byte, int64, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, 0, io.EOF
		}
		return nil, 0, err
	}
	size := order.Uint32(hdr[0:4])
	pts := order.Uint64(hdr[4:12])

	data := make([]byte, size)
	if _, err := io.ReadFull(d.r, data); err != nil {
		return nil, 0, errors.Wrap(err, "ivf: truncated frame")
	}

	return data, int64(pts), nil
}

// Codec implements driver.Demuxer. It returns the header's FourCC as
// stored (e.g. "AV01"); the FourCC is not checked against AV1.
func (d *Demuxer) Codec() string {
	return string(d.Header.FourCC[:])
}
