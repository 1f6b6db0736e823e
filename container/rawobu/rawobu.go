/*
DESCRIPTION
  rawobu.go implements the fallback demultiplexer for a raw low-overhead
  AV1 bitstream: a continuous run of OBUs with obu_has_size_field = 1,
  with no container framing at all. Grounded on spec.md §6's demuxer
  sniffing fallback; style follows container/ivf/ivf.go.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// Package rawobu provides a passthrough demultiplexer for an
// unwrapped, continuous OBU stream.
package rawobu

import (
	"io"

	"github.com/pkg/errors"
)

// Demuxer hands the driver the entire remaining byte stream as a single
// access unit: with no container to delimit frames, the OBU Framer
// itself is the only boundary authority, and the driver's per-OBU loop
// already walks a byte slice OBU by OBU.
type Demuxer struct {
	r    io.Reader
	done bool
}

// Open wraps r as a raw OBU stream.
func Open(r io.Reader) *Demuxer {
	return &Demuxer{r: r}
}

// NextUnit implements driver.Demuxer: it returns every remaining byte
// from the source exactly once, then io.EOF.
func (d *Demuxer) NextUnit() ([]byte, int64, error) {
	if d.done {
		return nil, 0, io.EOF
	}
	d.done = true
	data, err := io.ReadAll(d.r)
	if err != nil {
		return nil, 0, errors.Wrap(err, "rawobu: reading stream")
	}
	if len(data) == 0 {
		return nil, 0, io.EOF
	}
	return data, 0, nil
}

// Codec implements driver.Demuxer. The raw OBU path has no external
// codec tag; the stream is assumed to be AV1 by construction (it was
// only selected because container sniffing failed).
func (d *Demuxer) Codec() string {
	return "av01"
}
