// Package publish contains what sample publishers share.
package publish

import (
	"github.com/golang/glog"

	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/pointer"
	"github.com/robotalks/headtrack/pkg/tracker"
)

// Calibrator handles remote calibration requests.
type Calibrator interface {
	Calibrate() error
	SetReference(imu.EulerAngles)
}

// SampleMessage builds the message of a sample, with the pointer
// position if m isn't nil.
func SampleMessage(s tracker.Sample, device string, m *pointer.Mapper) *msgs.Sample {
	msg := s.Message(device)
	if m != nil {
		pt := m.MapClamped(s.Relative)
		msg.Pointer = &msgs.Point{X: pt.X, Y: pt.Y}
	}
	return msg
}

// HandleCalibrate decodes a msgs.Calibrate request and applies it.
// An empty payload calibrates on the latest sample.
func HandleCalibrate(c Calibrator, format string, payload []byte) error {
	var req msgs.Calibrate
	if len(payload) > 0 {
		if err := msgs.Decode(format, payload, &req); err != nil {
			return err
		}
	}
	if ref := req.Reference; ref != nil {
		c.SetReference(imu.EulerAngles{
			Yaw:   imu.AngleFromDegrees(ref.Yaw).Radians(),
			Pitch: imu.AngleFromDegrees(ref.Pitch).Radians(),
		})
		glog.Infof("reference set remotely: yaw=%.2f pitch=%.2f", ref.Yaw, ref.Pitch)
		return nil
	}
	return c.Calibrate()
}
