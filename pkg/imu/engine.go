package imu

// Engine converts quaternions to raw and relative angles.
type Engine struct {
	// Normalize scales quaternions to unit length before conversion.
	Normalize bool

	ref *Reference
}

// NewEngine creates an Engine with the given reference,
// a new one is created if ref is nil.
func NewEngine(ref *Reference) *Engine {
	if ref == nil {
		ref = &Reference{}
	}
	return &Engine{ref: ref}
}

// Reference returns the calibration reference.
func (e *Engine) Reference() *Reference {
	if e.ref == nil {
		e.ref = &Reference{}
	}
	return e.ref
}

// ToEuler converts q to raw Euler angles.
func (e *Engine) ToEuler(q Quaternion) EulerAngles {
	if e.Normalize {
		q = q.Normalized()
	}
	return ToEuler(q)
}

// SetReference calibrates the neutral orientation.
func (e *Engine) SetReference(raw EulerAngles) {
	e.Reference().Set(raw)
}

// ApplyReference returns raw relative to the calibrated reference.
func (e *Engine) ApplyReference(raw EulerAngles) EulerAngles {
	return e.Reference().Apply(raw)
}

// Process returns both raw and relative angles of q.
func (e *Engine) Process(q Quaternion) (raw, relative EulerAngles) {
	raw = e.ToEuler(q)
	return raw, e.ApplyReference(raw)
}
