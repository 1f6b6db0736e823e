/*
DESCRIPTION
  bitreader.go provides a bit reader implementation that reads from an
  io.Reader data source, plus the non-uniform and signed codings that the
  AV1 uncompressed header syntax relies on.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

// Package bitreader provides a big-endian bit reader over an io.Reader,
// supporting the f(n), su(n) and ns(n) codings used by AV1's uncompressed
// header syntax, plus a byte-level LEB128 decoder.
package bitreader

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// ErrShortRead is returned (wrapped) whenever the underlying source is
// exhausted before the requested number of bits or bytes is available.
var ErrShortRead = errors.New("bitreader: short read")

// Reader is a big-endian bit reader. It is not bit-seekable: it consumes
// bits in stream order and carries no alignment requirement beyond what
// callers observe between calls.
type Reader struct {
	r     io.ByteReader
	n     uint64
	bits  int
	nRead int
}

// New returns a new Reader wrapping r.
func New(r io.Reader) *Reader {
	byter, ok := r.(io.ByteReader)
	if !ok {
		byter = bufio.NewReader(r)
	}
	return &Reader{r: byter}
}

// ReadBits reads n bits (0 <= n <= 32) and returns them in the
// least-significant bits of the result, MSB-first.
func (r *Reader) ReadBits(n int) (uint64, error) {
	for n > r.bits {
		b, err := r.r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(ErrShortRead, err.Error())
		}
		r.nRead++
		r.n <<= 8
		r.n |= uint64(b)
		r.bits += 8
	}
	v := (r.n >> uint(r.bits-n)) & ((1 << uint(n)) - 1)
	r.bits -= n
	return v, nil
}

// F reads an n-bit unsigned integer, f(n) in the AV1 specification.
func (r *Reader) F(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	v, err := r.ReadBits(n)
	if err != nil {
		return 0, errors.Wrap(err, "f(n)")
	}
	return uint32(v), nil
}

// Flag reads a single bit and returns it as a bool, f(1) != 0.
func (r *Reader) Flag() (bool, error) {
	v, err := r.F(1)
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// SU reads an n-bit value with an implicit sign bit: the top bit set means
// the magnitude formed by the remaining bits is negative-offset by 2^n.
func (r *Reader) SU(n int) (int32, error) {
	v, err := r.F(n)
	if err != nil {
		return 0, errors.Wrap(err, "su(n)")
	}
	value := int64(v)
	signMask := int64(1) << uint(n-1)
	if int64(v)&signMask != 0 {
		value -= 2 * signMask
	}
	return int32(value), nil
}

// floorLog2 returns floor(log2(x)) for x >= 1.
func floorLog2(x uint32) int {
	s := -1
	for x != 0 {
		x >>= 1
		s++
	}
	return s
}

// NS reads a non-uniform value in [0, n), per the AV1 ns(n) coding: with
// w = floor(log2(n))+1 and m = 2^w - n, it reads w-1 bits and, if that
// value is below m, returns it directly; otherwise it reads one more bit
// to disambiguate.
func (r *Reader) NS(n uint32) (uint32, error) {
	if n <= 1 {
		return 0, nil
	}
	w := floorLog2(n) + 1
	m := uint32(1<<uint(w)) - n
	v, err := r.F(w - 1)
	if err != nil {
		return 0, errors.Wrap(err, "ns(n)")
	}
	if v < m {
		return v, nil
	}
	extra, err := r.F(1)
	if err != nil {
		return 0, errors.Wrap(err, "ns(n) extra bit")
	}
	return (v << 1) - m + extra, nil
}

// ByteAligned reports whether the reader sits at the start of a byte.
func (r *Reader) ByteAligned() bool {
	return r.bits == 0
}

// BitsRemainingInByte returns how many unconsumed bits remain in the
// current byte buffer (0 if byte-aligned).
func (r *Reader) BitsRemainingInByte() int {
	return r.bits
}

// BytesRead returns the number of whole bytes pulled from the underlying
// source so far (including any bits of the current, partially consumed
// byte).
func (r *Reader) BytesRead() int {
	return r.nRead
}

// MaxLeb128Bytes is the maximum number of bytes a LEB128 value may occupy,
// per the AV1 bitstream specification.
const MaxLeb128Bytes = 8

// Leb128 decodes a little-endian base-128 variable length integer at byte
// granularity from rd, returning the decoded value and the number of bytes
// consumed. It fails if more than MaxLeb128Bytes bytes are needed or if the
// decoded value does not fit in 32 bits.
func Leb128(rd io.ByteReader) (value uint64, n int, err error) {
	for i := 0; i < MaxLeb128Bytes; i++ {
		b, err := rd.ReadByte()
		if err != nil {
			return 0, n, errors.Wrap(ErrShortRead, err.Error())
		}
		n++
		value |= uint64(b&0x7f) << uint(i*7)
		if b&0x80 == 0 {
			if value > (uint64(1)<<32)-1 {
				return 0, n, errors.New("leb128: value exceeds 32 bits")
			}
			return value, n, nil
		}
	}
	return 0, n, errors.New("leb128: too many continuation bytes")
}
