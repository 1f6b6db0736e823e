/*
DESCRIPTION
  webm.go implements a minimal Matroska/WebM demultiplexer: just enough
  EBML element walking to locate the V_AV1 track and read its
  SimpleBlock payloads in cluster order. Grounded on
  original_source/src/mkv.rs's open_mkvfile/next_block; no general EBML
  or lacing support is attempted, matching the original's own scope.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// Package webm provides a minimal Matroska/WebM demultiplexer that
// extracts AV1 SimpleBlock payloads. EBML header, Segment, Tracks and
// Cluster elements are walked; Attachments, Cues, Chapters and similar
// are skipped by their recorded size. No third-party EBML library
// exists anywhere in the example pack this module was grounded on, so
// this walker is hand-rolled against the standard library, the same
// choice the original Rust source made.
package webm

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Matroska element IDs this package recognizes, §mkv.rs.
const (
	elementEBML        = 0x1A45DFA3
	elementSegment      = 0x18538067
	elementInfo         = 0x1549A966
	elementCluster      = 0x1F43B675
	elementTimecode     = 0xE7
	elementSimpleBlock  = 0xA3
	elementBlockGroup   = 0xA0
	elementTracks       = 0x1654AE6B
	elementTrackEntry   = 0xAE
	elementTrackNumber  = 0xD7
	elementTrackType    = 0x83
	elementCodecID      = 0x86
	elementVideo        = 0xE0
)

// CodecAV1 is the Matroska CodecID for an AV1 video track.
const CodecAV1 = "V_AV1"

type track struct {
	num     uint64
	typ     uint64
	codecID string
}

type cluster struct {
	timecode  int64
	posBegin  int64
	posEnd    int64
}

// Demuxer extracts AV1 access units from a WebM file.
type Demuxer struct {
	r io.ReadSeeker

	tracks   []track
	av1Track uint64

	clusters    []cluster
	curCluster  int
	curOffset   int64
}

// Open parses the EBML/Segment/Tracks structure of r and locates its
// V_AV1 track. The reader must support Seek since EBML elements are
// walked by skipping over unrecognized sizes.
func Open(r io.ReadSeeker) (*Demuxer, error) {
	d := &Demuxer{r: r}

	id, err := readElementID(r)
	if err != nil {
		return nil, errors.Wrap(err, "webm: EBML header")
	}
	if id != elementEBML {
		return nil, errors.New("webm: missing EBML header element")
	}
	sz, err := readDataSize(r)
	if err != nil {
		return nil, err
	}
	if _, err := r.Seek(sz, io.SeekCurrent); err != nil {
		return nil, err
	}

	id, err = readElementID(r)
	if err != nil {
		return nil, errors.Wrap(err, "webm: Segment header")
	}
	if id != elementSegment {
		return nil, errors.New("webm: missing Segment element")
	}
	if _, err := readDataSize(r); err != nil {
		return nil, err
	}

	for {
		id, err := readElementID(r)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sz, err := readDataSize(r)
		if err != nil {
			return nil, err
		}
		switch id {
		case elementTracks:
			if err := d.readTracks(sz); err != nil {
				return nil, err
			}
		case elementCluster:
			if err := d.readCluster(sz); err != nil {
				return nil, err
			}
		default:
			if _, err := r.Seek(sz, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}

	found := false
	for _, t := range d.tracks {
		if t.codecID == CodecAV1 {
			d.av1Track = t.num
			found = true
			break
		}
	}
	if !found {
		return nil, errors.New("webm: no V_AV1 track found")
	}

	return d, nil
}

func (d *Demuxer) readTracks(limit int64) error {
	end, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	end += limit

	for {
		pos, err := d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if pos >= end {
			return nil
		}
		id, err := readElementID(d.r)
		if err != nil {
			return err
		}
		sz, err := readDataSize(d.r)
		if err != nil {
			return err
		}
		if id != elementTrackEntry {
			if _, err := d.r.Seek(sz, io.SeekCurrent); err != nil {
				return err
			}
			continue
		}
		t, err := d.readTrackEntry(sz)
		if err != nil {
			return err
		}
		d.tracks = append(d.tracks, t)
	}
}

func (d *Demuxer) readTrackEntry(limit int64) (track, error) {
	end, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return track{}, err
	}
	end += limit
	var t track

	for {
		pos, err := d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return t, err
		}
		if pos >= end {
			return t, nil
		}
		id, err := readElementID(d.r)
		if err != nil {
			return t, err
		}
		sz, err := readDataSize(d.r)
		if err != nil {
			return t, err
		}
		switch id {
		case elementTrackNumber:
			v, err := readUint(d.r, sz)
			if err != nil {
				return t, err
			}
			t.num = v
		case elementTrackType:
			v, err := readUint(d.r, sz)
			if err != nil {
				return t, err
			}
			t.typ = v
		case elementCodecID:
			buf := make([]byte, sz)
			if _, err := io.ReadFull(d.r, buf); err != nil {
				return t, err
			}
			t.codecID = string(buf)
		default:
			if _, err := d.r.Seek(sz, io.SeekCurrent); err != nil {
				return t, err
			}
		}
	}
}

func (d *Demuxer) readCluster(limit int64) error {
	start, err := d.r.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	end := start + limit

	c := cluster{posEnd: end}
	first := true

	for {
		pos, err := d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
		if pos >= end {
			break
		}
		id, err := readElementID(d.r)
		if err != nil {
			return err
		}
		sz, err := readDataSize(d.r)
		if err != nil {
			return err
		}
		switch id {
		case elementTimecode:
			v, err := readUint(d.r, sz)
			if err != nil {
				return err
			}
			c.timecode = int64(v)
		case elementSimpleBlock:
			if first {
				c.posBegin = start
				first = false
			}
			if _, err := d.r.Seek(sz, io.SeekCurrent); err != nil {
				return err
			}
		default:
			if _, err := d.r.Seek(sz, io.SeekCurrent); err != nil {
				return err
			}
		}
	}

	d.clusters = append(d.clusters, c)
	return nil
}

// NextUnit implements driver.Demuxer: it walks SimpleBlock elements
// cluster by cluster, skipping those that do not belong to the AV1
// track, and returns the payload of the next one that does.
func (d *Demuxer) NextUnit() ([]byte, int64, error) {
	for {
		if d.curCluster >= len(d.clusters) {
			return nil, 0, io.EOF
		}
		cl := d.clusters[d.curCluster]
		if d.curOffset == 0 {
			d.curOffset = cl.posBegin
		}
		if d.curOffset >= cl.posEnd {
			d.curCluster++
			d.curOffset = 0
			continue
		}

		if _, err := d.r.Seek(d.curOffset, io.SeekStart); err != nil {
			return nil, 0, err
		}
		id, err := readElementID(d.r)
		if err != nil {
			return nil, 0, err
		}
		sz, err := readDataSize(d.r)
		if err != nil {
			return nil, 0, err
		}
		if id != elementSimpleBlock {
			d.curOffset, err = d.r.Seek(sz, io.SeekCurrent)
			if err != nil {
				return nil, 0, err
			}
			continue
		}

		trackNum, n, err := readVint(d.r)
		if err != nil {
			return nil, 0, err
		}
		var hdr [3]byte
		if _, err := io.ReadFull(d.r, hdr[:]); err != nil {
			return nil, 0, err
		}
		tcOffset := int16(binary.BigEndian.Uint16(hdr[0:2]))
		payloadSize := sz - int64(n) - 3

		if uint64(trackNum) != d.av1Track {
			d.curOffset, err = d.r.Seek(payloadSize, io.SeekCurrent)
			if err != nil {
				return nil, 0, err
			}
			continue
		}

		data := make([]byte, payloadSize)
		if _, err := io.ReadFull(d.r, data); err != nil {
			return nil, 0, err
		}
		d.curOffset, err = d.r.Seek(0, io.SeekCurrent)
		if err != nil {
			return nil, 0, err
		}

		return data, cl.timecode + int64(tcOffset), nil
	}
}

// Codec implements driver.Demuxer.
func (d *Demuxer) Codec() string {
	return CodecAV1
}

// readElementID reads an EBML element ID (1-4 bytes, leading bits
// indicate length and stay part of the value).
func readElementID(r io.Reader) (uint32, error) {
	var b0 [1]byte
	if _, err := io.ReadFull(r, b0[:]); err != nil {
		return 0, err
	}
	switch {
	case b0[0]&0x80 == 0x80:
		return uint32(b0[0]), nil
	case b0[0]&0xC0 == 0x40:
		var rest [1]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, err
		}
		return uint32(b0[0])<<8 | uint32(rest[0]), nil
	case b0[0]&0xE0 == 0x20:
		var rest [2]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, err
		}
		return uint32(b0[0])<<16 | uint32(rest[0])<<8 | uint32(rest[1]), nil
	case b0[0]&0xF0 == 0x10:
		var rest [3]byte
		if _, err := io.ReadFull(r, rest[:]); err != nil {
			return 0, err
		}
		return uint32(b0[0])<<24 | uint32(rest[0])<<16 | uint32(rest[1])<<8 | uint32(rest[2]), nil
	default:
		return 0, errors.New("webm: invalid element id")
	}
}

// readVint reads an EBML variable-size integer (the element's own
// length-marker bit stripped from the value) and returns it with the
// number of bytes consumed.
func readVint(r io.Reader) (int64, int, error) {
	var b0 [1]byte
	if _, err := io.ReadFull(r, b0[:]); err != nil {
		return 0, 0, err
	}
	lzcnt := leadingZeros8(b0[0])
	if lzcnt > 7 {
		return 0, 0, errors.New("webm: invalid vint")
	}
	value := int64(b0[0]) & ((1 << uint(7-lzcnt)) - 1)
	if lzcnt > 0 {
		buf := make([]byte, lzcnt)
		if _, err := io.ReadFull(r, buf); err != nil {
			return 0, 0, err
		}
		for _, b := range buf {
			value = value<<8 | int64(b)
		}
	}
	return value, 1 + lzcnt, nil
}

// readDataSize reads an EBML data-size vint, discarding its length.
func readDataSize(r io.Reader) (int64, error) {
	v, _, err := readVint(r)
	return v, err
}

func readUint(r io.Reader, n int64) (uint64, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return 0, err
	}
	var v uint64
	for _, b := range buf {
		v = v<<8 | uint64(b)
	}
	return v, nil
}

func leadingZeros8(b byte) int {
	n := 0
	for i := 7; i >= 0; i-- {
		if b&(1<<uint(i)) != 0 {
			break
		}
		n++
	}
	return n
}
