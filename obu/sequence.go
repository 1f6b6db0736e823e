/*
DESCRIPTION
  sequence.go holds the Sequence Context: the most recently installed
  Sequence Header plus the Reference-Frame Manager it owns. Grounded on
  original_source/src/av1.rs's Sequence struct.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// Sequence is the mutable context a Stream Driver threads through
// successive OBU parses: the latest Sequence Header (nil until one has
// been installed) and the Reference-Frame Manager it owns.
type Sequence struct {
	Header *SequenceHeader
	RFMan  *RefFrameManager
}

// NewSequence returns an empty Sequence Context with a fresh
// Reference-Frame Manager and no installed Sequence Header.
func NewSequence() *Sequence {
	return &Sequence{RFMan: NewRefFrameManager()}
}

// Install replaces the current Sequence Header, overwriting any prior
// one. It does not touch the Reference-Frame Manager: per spec.md §4.4,
// the manager is created once per sequence context and lives across
// Sequence Header replacements within the same stream.
func (s *Sequence) Install(sh *SequenceHeader) {
	s.Header = sh
}
