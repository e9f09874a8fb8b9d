package imu

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedMessage indicates the frame doesn't carry orientation.
	ErrUnsupportedMessage = errors.New("unsupported message")
	// ErrPayloadSize indicates the orientation payload has a wrong size.
	ErrPayloadSize = errors.New("invalid payload size")
)

// UnsupportedMessageError is returned for frames other than spp.MsgIMU.
type UnsupportedMessageError struct {
	ID byte
}

// Error implements error.
func (e *UnsupportedMessageError) Error() string {
	return fmt.Sprintf("%v: id=0x%02x", ErrUnsupportedMessage, e.ID)
}

// Is matches ErrUnsupportedMessage.
func (e *UnsupportedMessageError) Is(target error) bool {
	return target == ErrUnsupportedMessage
}

// UnsupportedEventError is returned for spatial data events other than
// EventGRV.
type UnsupportedEventError struct {
	Event SpatialEvent
}

// Error implements error.
func (e *UnsupportedEventError) Error() string {
	return fmt.Sprintf("%v: event=0x%02x", ErrUnsupportedMessage, byte(e.Event))
}

// Is matches ErrUnsupportedMessage.
func (e *UnsupportedEventError) Is(target error) bool {
	return target == ErrUnsupportedMessage
}

// PayloadSizeError is returned when the payload has an unexpected size.
type PayloadSizeError struct {
	Size   int
	Expect int
}

// Error implements error.
func (e *PayloadSizeError) Error() string {
	return fmt.Sprintf("%v: %d, expect %d", ErrPayloadSize, e.Size, e.Expect)
}

// Is matches ErrPayloadSize.
func (e *PayloadSizeError) Is(target error) bool {
	return target == ErrPayloadSize
}
