/*
DESCRIPTION
  refframe.go implements the reference-frame manager: the 8-slot virtual
  decoded picture buffer and the mark/update/output processes that the
  stream driver applies around each non-show-existing frame. Grounded on
  original_source/src/av1.rs's RefFrameManager.

LICENSE
  Copyright (C) 2026 the av1inspect contributors. All Rights Reserved.
*/

package obu

// RefSlot is one of the eight slots in the reference-frame buffer.
type RefSlot struct {
	Valid       bool
	FrameID     uint16
	FrameType   FrameType
	OrderHint   uint8
	SavedGMParams [RefsPerFrame + 1][6]int32 // Indexed by ref_frame name (1..7 used; 0 unused).
	DecodeNumber  int                        // decode_order at the time this slot was last written.
}

// RefFrameManager is the reference-frame buffer together with the
// decode/presentation order counters. It is owned exclusively by a
// Sequence, created once per input stream.
type RefFrameManager struct {
	Slots [NumRefFrames]RefSlot

	// DecodeOrder is the next decode index to be assigned to a
	// non-show-existing frame.
	DecodeOrder int

	// PresentOrder is the next presentation index to be assigned to a
	// shown frame (including show-existing occurrences).
	PresentOrder int
}

// NewRefFrameManager returns a fresh, all-invalid reference-frame
// manager.
func NewRefFrameManager() *RefFrameManager {
	return &RefFrameManager{}
}

// Reset invalidates every slot and zeroes each slot's order hint. Called
// when a Key frame with show_frame is about to be parsed, per spec.md §3
// "Invariant" for the Frame Header.
func (m *RefFrameManager) Reset() {
	for i := range m.Slots {
		m.Slots[i].Valid = false
		m.Slots[i].OrderHint = 0
	}
}

// MarkRefFrames implements the mark_ref_frames(idLen, sh, fh) process,
// §4.4. It is only meaningful when the sequence uses frame-id numbering.
func (m *RefFrameManager) MarkRefFrames(idLen int, diffLen int, currentFrameID uint32) {
	for i := range m.Slots {
		id := uint32(m.Slots[i].FrameID)
		if currentFrameID > (1 << uint(diffLen)) {
			if id > currentFrameID || id < currentFrameID-(1<<uint(diffLen)) {
				m.Slots[i].Valid = false
			}
		} else {
			upper := (uint32(1) << uint(idLen)) + currentFrameID - (1 << uint(diffLen))
			if id > currentFrameID && id < upper {
				m.Slots[i].Valid = false
			}
		}
	}
}

// UpdateProcess implements update_process(fh), §4.4: every slot whose bit
// is set in refreshFrameFlags is published with the frame's identity and
// saved global motion parameters, then DecodeOrder is advanced by one.
func (m *RefFrameManager) UpdateProcess(refreshFrameFlags uint8, currentFrameID uint32, frameType FrameType, orderHint uint8, gmParams [RefsPerFrame + 1][6]int32) {
	decodeNumber := m.DecodeOrder
	for i := range m.Slots {
		if refreshFrameFlags&(1<<uint(i)) != 0 {
			m.Slots[i].Valid = true
			m.Slots[i].FrameID = uint16(currentFrameID)
			m.Slots[i].FrameType = frameType
			m.Slots[i].OrderHint = orderHint
			m.Slots[i].SavedGMParams = gmParams
			m.Slots[i].DecodeNumber = decodeNumber
		}
	}
	m.DecodeOrder++
}

// OutputProcess implements output_process(fh), §4.4: advances
// PresentOrder by one. Called whenever the frame is shown (show_frame or
// show_existing_frame).
func (m *RefFrameManager) OutputProcess() {
	m.PresentOrder++
}

// GetRelativeDist implements get_relative_dist(a, b, sh), §4.3: the
// cyclic signed distance between two order hints, or 0 if order hint
// coding is disabled for the sequence.
func GetRelativeDist(a, b int, enableOrderHint bool, orderHintBits int) int {
	if !enableOrderHint {
		return 0
	}
	diff := a - b
	m := 1 << uint(orderHintBits-1)
	diff = (diff & (m - 1)) - (diff & m)
	return diff
}
