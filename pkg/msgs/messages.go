package msgs

import (
	"github.com/golang/protobuf/proto"
)

// Quaternion is the orientation reported by the device.
type Quaternion struct {
	W float64 `protobuf:"fixed64,1,opt,name=w,proto3" json:"w"`
	X float64 `protobuf:"fixed64,2,opt,name=x,proto3" json:"x"`
	Y float64 `protobuf:"fixed64,3,opt,name=y,proto3" json:"y"`
	Z float64 `protobuf:"fixed64,4,opt,name=z,proto3" json:"z"`
}

// ProtoMessage implements proto.Message.
func (m *Quaternion) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Quaternion) Reset() { *m = Quaternion{} }

// String implements proto.Message.
func (m *Quaternion) String() string { return proto.CompactTextString(m) }

// Euler contains angles in degrees.
type Euler struct {
	Yaw   float64 `protobuf:"fixed64,1,opt,name=yaw,proto3" json:"yaw"`
	Pitch float64 `protobuf:"fixed64,2,opt,name=pitch,proto3" json:"pitch"`
	Roll  float64 `protobuf:"fixed64,3,opt,name=roll,proto3" json:"roll"`
}

// ProtoMessage implements proto.Message.
func (m *Euler) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Euler) Reset() { *m = Euler{} }

// String implements proto.Message.
func (m *Euler) String() string { return proto.CompactTextString(m) }

// Point is a screen position in pixels.
type Point struct {
	X float64 `protobuf:"fixed64,1,opt,name=x,proto3" json:"x"`
	Y float64 `protobuf:"fixed64,2,opt,name=y,proto3" json:"y"`
}

// ProtoMessage implements proto.Message.
func (m *Point) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Point) Reset() { *m = Point{} }

// String implements proto.Message.
func (m *Point) String() string { return proto.CompactTextString(m) }

// Sample is one orientation sample.
type Sample struct {
	Device string `protobuf:"bytes,1,opt,name=device,proto3" json:"device,omitempty"`
	// TimestampNs is the receive time in Unix nanoseconds.
	TimestampNs int64       `protobuf:"varint,2,opt,name=timestamp_ns,json=timestampNs,proto3" json:"timestamp_ns"`
	Seq         uint64      `protobuf:"varint,3,opt,name=seq,proto3" json:"seq"`
	Quaternion  *Quaternion `protobuf:"bytes,4,opt,name=quaternion,proto3" json:"quaternion,omitempty"`
	Raw         *Euler      `protobuf:"bytes,5,opt,name=raw,proto3" json:"raw,omitempty"`
	Relative    *Euler      `protobuf:"bytes,6,opt,name=relative,proto3" json:"relative,omitempty"`
	Pointer     *Point      `protobuf:"bytes,7,opt,name=pointer,proto3" json:"pointer,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Sample) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Sample) Reset() { *m = Sample{} }

// String implements proto.Message.
func (m *Sample) String() string { return proto.CompactTextString(m) }

// DeviceMeta describes the tracker publishing samples, retained on MQTT.
type DeviceMeta struct {
	Device    string `protobuf:"bytes,1,opt,name=device,proto3" json:"device"`
	Transport string `protobuf:"bytes,2,opt,name=transport,proto3" json:"transport,omitempty"`
	Coverage  string `protobuf:"bytes,3,opt,name=coverage,proto3" json:"coverage,omitempty"`
	Format    string `protobuf:"bytes,4,opt,name=format,proto3" json:"format,omitempty"`
	Online    bool   `protobuf:"varint,5,opt,name=online,proto3" json:"online"`
	// StartedAt is in Unix nanoseconds.
	StartedAt int64 `protobuf:"varint,6,opt,name=started_at,json=startedAt,proto3" json:"started_at,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *DeviceMeta) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DeviceMeta) Reset() { *m = DeviceMeta{} }

// String implements proto.Message.
func (m *DeviceMeta) String() string { return proto.CompactTextString(m) }

// Calibrate requests a new calibration reference. Without Reference, the
// latest sample becomes the reference.
type Calibrate struct {
	Reference *Euler `protobuf:"bytes,1,opt,name=reference,proto3" json:"reference,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Calibrate) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Calibrate) Reset() { *m = Calibrate{} }

// String implements proto.Message.
func (m *Calibrate) String() string { return proto.CompactTextString(m) }
