package imu

import "math"

// Angle is an angle in radians, supporting conversion to degrees.
type Angle float64

// AngleFromDegrees creates Angle from degrees, normalized to [-π, π].
func AngleFromDegrees(d float64) Angle {
	return Angle(NormalizeRadians(d * math.Pi / 180.0))
}

// AngleFromRadians creates Angle from radians, normalized to [-π, π].
func AngleFromRadians(r float64) Angle {
	return Angle(NormalizeRadians(r))
}

// Sub returns the shortest signed difference a - a1.
func (a Angle) Sub(a1 Angle) Angle {
	return Angle(NormalizeRadians(float64(a) - float64(a1)))
}

// Radians gets angle in radians.
func (a Angle) Radians() float64 {
	return float64(a)
}

// Degrees gets angle in degrees.
func (a Angle) Degrees() float64 {
	return float64(a) * 180 / math.Pi
}

// NormalizeRadians wraps r into [-π, π].
func NormalizeRadians(r float64) float64 {
	if r >= 2*math.Pi || r <= -2*math.Pi {
		r = math.Remainder(r, 2*math.Pi)
	}
	if r > math.Pi {
		r -= 2 * math.Pi
	} else if r < -math.Pi {
		r += 2 * math.Pi
	}
	return r
}
