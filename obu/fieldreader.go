/*
DESCRIPTION
  fieldreader.go provides a sticky-error wrapper around bitreader.Reader so
  that long runs of unconditional field reads in the syntax parsers don't
  need an if err != nil after every call.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import (
	"github.com/pkg/errors"

	"github.com/ausocean/av1inspect/bitreader"
)

// fieldReader wraps a bitreader.Reader, latching the first error
// encountered so callers can perform a sequence of reads and check err()
// once at the end of a syntax structure.
type fieldReader struct {
	br *bitreader.Reader
	e  error
}

func newFieldReader(br *bitreader.Reader) *fieldReader {
	return &fieldReader{br: br}
}

// f reads an n-bit unsigned field, f(n). Returns 0 if a prior error is
// latched.
func (r *fieldReader) f(n int) uint32 {
	if r.e != nil {
		return 0
	}
	var v uint32
	v, r.e = r.br.F(n)
	return v
}

// flag reads a single bit as a bool, f(1) != 0.
func (r *fieldReader) flag() bool {
	return r.f(1) != 0
}

// su reads a signed field, su(n).
func (r *fieldReader) su(n int) int32 {
	if r.e != nil {
		return 0
	}
	var v int32
	v, r.e = r.br.SU(n)
	return v
}

// ns reads a non-uniform field in [0, n), ns(n).
func (r *fieldReader) ns(n uint32) uint32 {
	if r.e != nil {
		return 0
	}
	var v uint32
	v, r.e = r.br.NS(n)
	return v
}

// err returns the first error latched by this fieldReader, if any.
func (r *fieldReader) err() error {
	return r.e
}

// fail latches err as the sticky error if one isn't already set, wrapping
// it with msg for context.
func (r *fieldReader) fail(err error, msg string) {
	if r.e == nil {
		r.e = errors.Wrap(err, msg)
	}
}
