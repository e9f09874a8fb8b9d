package spp

import (
	"errors"
	"fmt"
)

var (
	// ErrFraming indicates a frame attempt was abandoned because its header
	// was invalid (e.g. length out of range).
	ErrFraming = errors.New("framing error")
	// ErrChecksum indicates the checksum of a frame doesn't match.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrPayloadTooLarge indicates the payload can't be encoded in 10 bits.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrTransportClosed indicates the underlying byte stream ended.
	ErrTransportClosed = errors.New("transport closed")
)

// DropError describes a dropped frame attempt.
type DropError struct {
	// Reason is either ErrFraming or ErrChecksum.
	Reason error
	// ID is the message id, 0 if the header wasn't complete.
	ID byte
	// Length is the declared payload length.
	Length int
	// Expect and Actual are the checksums, only set for ErrChecksum.
	Expect uint16
	Actual uint16
}

// Error implements error.
func (e *DropError) Error() string {
	if e.Reason == ErrChecksum {
		return fmt.Sprintf("frame id=0x%02x len=%d dropped: %v (frame 0x%04x, computed 0x%04x)",
			e.ID, e.Length, e.Reason, e.Expect, e.Actual)
	}
	return fmt.Sprintf("frame len=%d dropped: %v", e.Length, e.Reason)
}

// Unwrap returns the reason so errors.Is matches ErrFraming/ErrChecksum.
func (e *DropError) Unwrap() error {
	return e.Reason
}
