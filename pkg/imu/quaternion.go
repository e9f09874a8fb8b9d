// Package imu converts the orientation reported by the earbud into angles.
package imu

import (
	"encoding/binary"
	"math"

	"github.com/robotalks/headtrack/pkg/spp"
)

// QuaternionSize is the payload size of spp.MsgIMU.
const QuaternionSize = 16

// Quaternion is a rotation quaternion. The device sends float32 components,
// they are promoted to float64 when decoded.
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity is the quaternion of no rotation.
var Identity = Quaternion{W: 1}

// DecodeQuaternion extracts the quaternion from an orientation frame.
func DecodeQuaternion(f *spp.Frame) (Quaternion, error) {
	if f.ID != spp.MsgIMU {
		return Quaternion{}, &UnsupportedMessageError{ID: f.ID}
	}
	return ParseQuaternion(f.Payload)
}

// ParseQuaternion decodes w, x, y, z as little-endian float32.
func ParseQuaternion(payload []byte) (Quaternion, error) {
	if len(payload) != QuaternionSize {
		return Quaternion{}, &PayloadSizeError{Size: len(payload), Expect: QuaternionSize}
	}
	return Quaternion{
		W: float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4]))),
		X: float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8]))),
		Y: float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[8:12]))),
		Z: float64(math.Float32frombits(binary.LittleEndian.Uint32(payload[12:16]))),
	}, nil
}

// EncodeQuaternion produces the payload of spp.MsgIMU.
func EncodeQuaternion(q Quaternion) []byte {
	b := make([]byte, QuaternionSize)
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(float32(q.W)))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(float32(q.X)))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(float32(q.Y)))
	binary.LittleEndian.PutUint32(b[12:16], math.Float32bits(float32(q.Z)))
	return b
}

// Frame wraps the quaternion into an orientation frame.
func (q Quaternion) Frame() *spp.Frame {
	return spp.NewFrame(spp.MsgIMU, EncodeQuaternion(q)...)
}

// Norm is the length of the quaternion.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized scales the quaternion to unit length.
// A zero quaternion is returned unchanged.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if n == 0 {
		return q
	}
	return Quaternion{W: q.W / n, X: q.X / n, Y: q.Y / n, Z: q.Z / n}
}
