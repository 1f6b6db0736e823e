/*
DESCRIPTION
  probe.go sniffs an opened stream file's container format by magic
  bytes and returns the matching driver.Demuxer, falling back to a raw
  OBU passthrough when no container signature matches. Grounded on
  spec.md §6's demuxer sniffing fallback.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package main

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/ausocean/av1inspect/container/ivf"
	"github.com/ausocean/av1inspect/container/mp4"
	"github.com/ausocean/av1inspect/container/rawobu"
	"github.com/ausocean/av1inspect/container/webm"
	"github.com/ausocean/av1inspect/driver"
)

var (
	magicIVF  = [4]byte{'D', 'K', 'I', 'F'}
	magicEBML = [4]byte{0x1A, 0x45, 0xDF, 0xA3}
	magicFtyp = [4]byte{'f', 't', 'y', 'p'} // at byte offset 4, not 0.
)

// probe reads f's leading bytes to identify its container format and
// returns a positioned driver.Demuxer for it. f is left at the position
// its chosen demuxer expects (probe itself performs no consumption
// beyond what Seek(0) undoes).
func probe(f *os.File) (driver.Demuxer, error) {
	var head [12]byte
	n, err := f.Read(head[:])
	if err != nil && n == 0 {
		return nil, errors.Wrap(err, "probe: reading header")
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "probe: rewinding")
	}

	switch {
	case [4]byte{head[0], head[1], head[2], head[3]} == magicIVF:
		return ivf.Open(f)
	case [4]byte{head[0], head[1], head[2], head[3]} == magicEBML:
		return webm.Open(f)
	case n >= 8 && [4]byte{head[4], head[5], head[6], head[7]} == magicFtyp:
		return mp4.Open(f)
	default:
		return rawobu.Open(f), nil
	}
}
