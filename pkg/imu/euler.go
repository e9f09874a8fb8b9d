package imu

import "math"

// EulerAngles are Z-Y-X Tait-Bryan angles in radians.
type EulerAngles struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// ToEuler converts a quaternion to Euler angles. The quaternion is used as
// is, a non-unit input gives scaled results.
func ToEuler(q Quaternion) EulerAngles {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return EulerAngles{
		Yaw:   math.Atan2(2*(w*z+x*y), 1-2*(y*y+z*z)),
		Pitch: math.Asin(clamp(2*(w*y-z*x), -1, 1)),
		Roll:  math.Atan2(2*(w*x+y*z), 1-2*(x*x+y*y)),
	}
}

// Sub subtracts yaw and pitch of e1, roll is kept.
func (e EulerAngles) Sub(e1 EulerAngles) EulerAngles {
	return EulerAngles{Yaw: e.Yaw - e1.Yaw, Pitch: e.Pitch - e1.Pitch, Roll: e.Roll}
}

// Degrees returns the angles in degrees.
func (e EulerAngles) Degrees() (yaw, pitch, roll float64) {
	return Angle(e.Yaw).Degrees(), Angle(e.Pitch).Degrees(), Angle(e.Roll).Degrees()
}

func clamp(v, min, max float64) float64 {
	if v > max {
		return max
	}
	if v < min {
		return min
	}
	return v
}
