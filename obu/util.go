/*
DESCRIPTION
  util.go provides small shared helpers used across the syntax parsers.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// byteSliceReader adapts a []byte to an io.Reader for bitreader.New.
func byteSliceReader(b []byte) io.Reader {
	return bytes.NewReader(b)
}

// errWrap wraps kind with msg, the shorthand used throughout this package
// in place of repeating errors.Wrap(kind, msg) at every call site.
func errWrap(kind error, msg string) error {
	return errors.Wrap(kind, msg)
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ceilLog2(x int) int {
	if x < 2 {
		return 0
	}
	i := 1
	p := 2
	for p < x {
		i++
		p <<= 1
	}
	return i
}
