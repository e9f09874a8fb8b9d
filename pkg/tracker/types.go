package tracker

import (
	"errors"
	"time"

	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/spp"
)

// ErrNoSample indicates no orientation has been received yet.
var ErrNoSample = errors.New("no sample received")

// Sample is one decoded orientation.
type Sample struct {
	Seq        uint64
	Time       time.Time
	Quaternion imu.Quaternion
	// Raw are the angles converted from Quaternion.
	Raw imu.EulerAngles
	// Relative are the angles relative to the calibration reference.
	Relative imu.EulerAngles
}

// Message converts the sample to the wire message, angles in degrees.
func (s Sample) Message(device string) *msgs.Sample {
	return &msgs.Sample{
		Device:      device,
		TimestampNs: s.Time.UnixNano(),
		Seq:         s.Seq,
		Quaternion: &msgs.Quaternion{
			W: s.Quaternion.W,
			X: s.Quaternion.X,
			Y: s.Quaternion.Y,
			Z: s.Quaternion.Z,
		},
		Raw:      eulerMsg(s.Raw),
		Relative: eulerMsg(s.Relative),
	}
}

func eulerMsg(e imu.EulerAngles) *msgs.Euler {
	yaw, pitch, roll := e.Degrees()
	return &msgs.Euler{Yaw: yaw, Pitch: pitch, Roll: roll}
}

// Sink receives every sample.
type Sink interface {
	WriteSample(Sample) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(Sample) error

// WriteSample implements Sink.
func (f SinkFunc) WriteSample(s Sample) error {
	return f(s)
}

// SensorState is the state of the sensor stream reported by the device.
type SensorState int

// Sensor states.
const (
	SensorUnknown SensorState = iota
	SensorAttached
	SensorDetached
)

// String implements fmt.Stringer.
func (s SensorState) String() string {
	switch s {
	case SensorAttached:
		return "attached"
	case SensorDetached:
		return "detached"
	}
	return "unknown"
}

// WearState is whether the earbud is worn.
type WearState int

// Wear states.
const (
	WearUnknown WearState = iota
	WearOn
	WearOff
)

// String implements fmt.Stringer.
func (s WearState) String() string {
	switch s {
	case WearOn:
		return "on"
	case WearOff:
		return "off"
	}
	return "unknown"
}

// Stats contains the counters of a Tracker.
type Stats struct {
	spp.Stats
	Samples uint64 `json:"samples"`
	// Unsupported counts frames skipped for their message id or event.
	Unsupported uint64 `json:"unsupported"`
	// BadPayloads counts orientation frames with a wrong payload size.
	BadPayloads uint64 `json:"bad_payloads"`
	// Overruns counts samples discarded because the consumer of Samples
	// fell behind, including while there is no consumer at all.
	Overruns   uint64 `json:"overruns"`
	SinkErrors uint64 `json:"sink_errors"`
}
