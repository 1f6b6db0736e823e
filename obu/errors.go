/*
DESCRIPTION
  errors.go defines the closed set of error kinds surfaced by the obu
  package, following the classification in the AV1 inspector
  specification's error handling design.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

import "github.com/pkg/errors"

// Error kinds. Callers classify a returned error against these sentinels
// with errors.Is (after errors.Cause where the error was wrapped with
// github.com/pkg/errors).
var (
	// ErrIO indicates the underlying byte source failed or was truncated.
	ErrIO = errors.New("obu: io error")

	// ErrMalformedHeader indicates a structurally invalid OBU header: a
	// nonzero forbidden bit, an oversized LEB128, or a size field that
	// does not fit within its containing unit.
	ErrMalformedHeader = errors.New("obu: malformed header")

	// ErrMalformedSyntax indicates a trailing-bits violation, an
	// out-of-range field value, or bit reader exhaustion mid-field.
	ErrMalformedSyntax = errors.New("obu: malformed syntax")

	// ErrConformanceViolation indicates a value that is well-formed but
	// violates a cross-field invariant, such as a reference frame id
	// mismatch.
	ErrConformanceViolation = errors.New("obu: conformance violation")

	// ErrUnsupported indicates a path the parser deliberately declines,
	// such as more than one operating point or the decoder model.
	ErrUnsupported = errors.New("obu: unsupported")
)

// Is reports whether err is, or wraps, one of the sentinel error kinds
// defined in this package.
func Is(err, kind error) bool {
	return errors.Is(err, kind)
}
