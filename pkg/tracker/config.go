package tracker

import (
	"time"

	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/spp"
)

// Defaults.
const (
	DefaultKeepAlive   = 2 * time.Second
	DefaultAttachPause = 200 * time.Millisecond
	DefaultBuffer      = 64
)

// Config defines the options of a Tracker.
type Config struct {
	// KeepAlive is the interval of keep-alive messages, negative disables.
	KeepAlive time.Duration
	// AttachPause is the delay between the two commands of Attach/Detach.
	AttachPause time.Duration
	// Coverage selects the checksum coverage.
	Coverage spp.Coverage
	// MaxPayload limits the accepted payload length.
	MaxPayload int
	// Normalize scales quaternions to unit length.
	Normalize bool
	// Buffer is the capacity of the sample channel.
	Buffer int
	// Reference is shared with other trackers if set.
	Reference *imu.Reference
}

// DefaultConfig returns the default Config.
func DefaultConfig() Config {
	return Config{
		KeepAlive:   DefaultKeepAlive,
		AttachPause: DefaultAttachPause,
		Buffer:      DefaultBuffer,
	}
}
