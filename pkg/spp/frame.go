package spp

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Framing constants.
const (
	// StartOfMessage marks the beginning of a frame.
	StartOfMessage byte = 0xFD
	// MaxPayloadLen is the largest payload the 10-bit length field holds.
	MaxPayloadLen = 0x3FF

	headerLen   = 4 // SOM + length/flags + id
	checksumLen = 2
	lengthMask  = 0x3FF
	flagsShift  = 10
)

// Message ids.
const (
	// MsgIMU carries a 16-byte orientation quaternion.
	MsgIMU byte = 0x01
	// MsgSetSpatialSensor enables (1) or disables (0) the sensor.
	MsgSetSpatialSensor byte = 0x7C
	// MsgSpatialData carries a sensor event, the first payload byte is
	// the event type.
	MsgSpatialData byte = 0xC2
	// MsgSensorControl carries one SensorControl byte.
	MsgSensorControl byte = 0xC3
)

// SensorControl is the payload of MsgSensorControl.
type SensorControl byte

// Sensor control codes.
const (
	ControlAttach        SensorControl = 0
	ControlDetach        SensorControl = 1
	ControlAttachSuccess SensorControl = 2
	ControlDetachSuccess SensorControl = 3
	ControlKeepAlive     SensorControl = 4
)

// FlagResponse is set by the device on replies.
const FlagResponse uint8 = 0x04

// Coverage selects the bytes protected by the checksum.
type Coverage int

const (
	// CoverIDPayload checksums message id and payload.
	CoverIDPayload Coverage = iota
	// CoverFrame checksums everything before the checksum, start marker
	// and length field included.
	CoverFrame
)

// String implements fmt.Stringer.
func (c Coverage) String() string {
	if c == CoverFrame {
		return "frame"
	}
	return "id+payload"
}

// ParseCoverage parses the String form of a Coverage, empty means CoverIDPayload.
func ParseCoverage(s string) (Coverage, error) {
	switch s {
	case "", "id+payload":
		return CoverIDPayload, nil
	case "frame":
		return CoverFrame, nil
	}
	return CoverIDPayload, fmt.Errorf("unknown checksum coverage: %q", s)
}

// Frame is a validated frame.
type Frame struct {
	ID      byte
	Flags   uint8
	Payload []byte
}

// NewFrame creates a Frame.
func NewFrame(id byte, payload ...byte) *Frame {
	return &Frame{ID: id, Payload: payload}
}

// NewControlFrame creates a MsgSensorControl frame.
func NewControlFrame(ctl SensorControl) *Frame {
	return NewFrame(MsgSensorControl, byte(ctl))
}

// IsResponse indicates the frame is a reply from the device.
func (f *Frame) IsResponse() bool {
	return f.Flags&FlagResponse != 0
}

func (f *Frame) lengthField() uint16 {
	return uint16(len(f.Payload))&lengthMask | uint16(f.Flags)<<flagsShift
}

// Checksum computes the checksum of the frame over the given coverage.
func (f *Frame) Checksum(cov Coverage) uint16 {
	var crc uint16
	if cov == CoverFrame {
		var head [3]byte
		head[0] = StartOfMessage
		binary.LittleEndian.PutUint16(head[1:], f.lengthField())
		crc = UpdateCRC16(crc, head[:])
	}
	crc = UpdateCRC16(crc, []byte{f.ID})
	return UpdateCRC16(crc, f.Payload)
}

// Encode returns encoded bytes using the given checksum coverage.
func (f *Frame) Encode(cov Coverage) ([]byte, error) {
	if len(f.Payload) > MaxPayloadLen {
		return nil, ErrPayloadTooLarge
	}
	b := make([]byte, headerLen+len(f.Payload)+checksumLen)
	b[0] = StartOfMessage
	binary.LittleEndian.PutUint16(b[1:3], f.lengthField())
	b[3] = f.ID
	copy(b[headerLen:], f.Payload)
	binary.LittleEndian.PutUint16(b[headerLen+len(f.Payload):], f.Checksum(cov))
	return b, nil
}

// Bytes returns encoded bytes with the default coverage.
// It panics if the payload is too large.
func (f *Frame) Bytes() []byte {
	b, err := f.Encode(CoverIDPayload)
	if err != nil {
		panic(err)
	}
	return b
}

// WriteTo writes encoded bytes.
func (f *Frame) WriteTo(w io.Writer) (int64, error) {
	b, err := f.Encode(CoverIDPayload)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}
