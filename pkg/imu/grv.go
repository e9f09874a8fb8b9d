package imu

import (
	"encoding/binary"
	"math"

	"github.com/robotalks/headtrack/pkg/spp"
)

// SpatialEvent is the first payload byte of spp.MsgSpatialData.
type SpatialEvent byte

// Spatial data events.
const (
	EventGRV     SpatialEvent = 0x20
	EventWearOn  SpatialEvent = 0x21
	EventWearOff SpatialEvent = 0x22
)

// String implements fmt.Stringer.
func (e SpatialEvent) String() string {
	switch e {
	case EventGRV:
		return "grv"
	case EventWearOn:
		return "wear-on"
	case EventWearOff:
		return "wear-off"
	}
	return "unknown"
}

// GRVSize is the minimum payload size of an EventGRV message:
// the event byte and x, y, z, w as int16.
const GRVSize = 9

const grvScale = 10000.0

// SpatialEventOf returns the event type of a spp.MsgSpatialData frame.
func SpatialEventOf(f *spp.Frame) (SpatialEvent, error) {
	if f.ID != spp.MsgSpatialData {
		return 0, &UnsupportedMessageError{ID: f.ID}
	}
	if len(f.Payload) == 0 {
		return 0, &PayloadSizeError{Size: 0, Expect: 1}
	}
	return SpatialEvent(f.Payload[0]), nil
}

// DecodeGRV extracts the game rotation vector reported in a
// spp.MsgSpatialData frame. Components are little-endian int16 scaled
// by 10000, in the order x, y, z, w.
func DecodeGRV(f *spp.Frame) (Quaternion, error) {
	ev, err := SpatialEventOf(f)
	if err != nil {
		return Quaternion{}, err
	}
	if ev != EventGRV {
		return Quaternion{}, &UnsupportedEventError{Event: ev}
	}
	if len(f.Payload) < GRVSize {
		return Quaternion{}, &PayloadSizeError{Size: len(f.Payload), Expect: GRVSize}
	}
	data := f.Payload[1:]
	component := func(i int) float64 {
		return float64(int16(binary.LittleEndian.Uint16(data[i*2:]))) / grvScale
	}
	return Quaternion{X: component(0), Y: component(1), Z: component(2), W: component(3)}, nil
}

// EncodeGRV produces a spp.MsgSpatialData frame carrying q.
func EncodeGRV(q Quaternion) *spp.Frame {
	payload := make([]byte, GRVSize)
	payload[0] = byte(EventGRV)
	for i, v := range []float64{q.X, q.Y, q.Z, q.W} {
		binary.LittleEndian.PutUint16(payload[1+i*2:], uint16(int16(math.Round(v*grvScale))))
	}
	return spp.NewFrame(spp.MsgSpatialData, payload...)
}
