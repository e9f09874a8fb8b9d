package pointer

import (
	"math"

	"github.com/robotalks/headtrack/pkg/imu"
)

// DefaultGain is the default pixels per degree.
const DefaultGain = 25.0

// Project maps an angular delta in degrees to a screen point around centroid.
// Positive yaw moves right, positive pitch moves up. The result isn't clamped.
func Project(dYaw, dPitch, gain float64, centroid Point) Point {
	return Point{
		X: centroid.X + gain*dYaw,
		Y: centroid.Y - gain*dPitch,
	}
}

// Mapper maps relative head orientation to the screen.
type Mapper struct {
	Gain     float64
	Centroid Point
	// Bounds limits Clamp, zero means unbounded.
	Bounds Size
}

// NewMapper creates a Mapper centered on the screen.
func NewMapper(screen Size, gain float64) *Mapper {
	if gain == 0 {
		gain = DefaultGain
	}
	return &Mapper{Gain: gain, Centroid: screen.Center(), Bounds: screen}
}

// Map projects angles relative to the calibrated reference.
func (m *Mapper) Map(relative imu.EulerAngles) Point {
	yaw, pitch, _ := relative.Degrees()
	return Project(yaw, pitch, m.Gain, m.Centroid)
}

// Clamp keeps p inside the bounds.
func (m *Mapper) Clamp(p Point) Point {
	if m.Bounds.IsZero() {
		return p
	}
	return Point{
		X: math.Max(0, math.Min(m.Bounds.CX, p.X)),
		Y: math.Max(0, math.Min(m.Bounds.CY, p.Y)),
	}
}

// MapClamped is Map followed by Clamp.
func (m *Mapper) MapClamped(relative imu.EulerAngles) Point {
	return m.Clamp(m.Map(relative))
}
