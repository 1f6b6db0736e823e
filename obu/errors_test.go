package obu

import (
	"testing"

	"github.com/pkg/errors"
)

func TestIsMatchesWrappedSentinel(t *testing.T) {
	wrapped := errors.Wrap(ErrMalformedSyntax, "sequence_header_obu: trailing bits")
	if !Is(wrapped, ErrMalformedSyntax) {
		t.Error("Is() = false, want true for an error wrapped with github.com/pkg/errors")
	}
	if Is(wrapped, ErrUnsupported) {
		t.Error("Is() = true, want false against an unrelated sentinel")
	}
}

func TestIsDistinguishesSentinels(t *testing.T) {
	kinds := []error{ErrIO, ErrMalformedHeader, ErrMalformedSyntax, ErrConformanceViolation, ErrUnsupported}
	for i, k := range kinds {
		for j, other := range kinds {
			if i == j {
				continue
			}
			if Is(k, other) {
				t.Errorf("Is(%v, %v) = true, want false", k, other)
			}
		}
	}
}
