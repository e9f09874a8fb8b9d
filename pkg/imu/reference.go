package imu

import "sync"

// Reference is the calibration reference, the neutral yaw and pitch.
// It's safe to Set from one goroutine while another calls Apply.
type Reference struct {
	yaw, pitch float64
	lock       sync.RWMutex
}

// Set replaces the reference with yaw and pitch of e.
func (r *Reference) Set(e EulerAngles) {
	r.lock.Lock()
	r.yaw, r.pitch = e.Yaw, e.Pitch
	r.lock.Unlock()
}

// Get returns the reference, Roll is always 0.
func (r *Reference) Get() EulerAngles {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return EulerAngles{Yaw: r.yaw, Pitch: r.pitch}
}

// Apply returns raw relative to the reference.
func (r *Reference) Apply(raw EulerAngles) EulerAngles {
	return raw.Sub(r.Get())
}
