package transport

import (
	"io"
	"os"
)

// Replay reads a captured stream, writes are discarded.
type Replay struct {
	io.ReadCloser
}

// Write implements io.Writer.
func (r *Replay) Write(p []byte) (int, error) {
	return len(p), nil
}

// OpenFile opens a capture file for replay.
func OpenFile(path string) (*Replay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Replay{ReadCloser: f}, nil
}
