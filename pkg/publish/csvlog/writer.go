// Package csvlog records samples as CSV.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/headtrack/pkg/tracker"
)

// Header is the first row written.
var Header = []string{
	"timestamp",
	"roll_deg", "pitch_deg", "yaw_deg",
	"quat_w", "quat_x", "quat_y", "quat_z",
}

// FileName returns the default log file name for a recording started at t.
func FileName(t time.Time) string {
	return "head_tracking_data_" + t.Format("20060102_150405") + ".csv"
}

// Writer is a tracker.Sink writing one row per sample.
// Timestamps are seconds relative to the first sample.
type Writer struct {
	csv    *csv.Writer
	closer io.Closer
	start  time.Time
	count  uint64
	err    error
	lock   sync.Mutex
}

// NewWriter creates a Writer and writes the header.
func NewWriter(w io.Writer) *Writer {
	cw := &Writer{csv: csv.NewWriter(w)}
	cw.err = cw.csv.Write(Header)
	if c, ok := w.(io.Closer); ok {
		cw.closer = c
	}
	return cw
}

// Create creates the file and a Writer on it.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	glog.Infof("recording samples to %s", path)
	return NewWriter(f), nil
}

// WriteSample implements tracker.Sink.
func (w *Writer) WriteSample(s tracker.Sample) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.err != nil {
		return w.err
	}
	if w.count == 0 {
		w.start = s.Time
	}
	yaw, pitch, roll := s.Raw.Degrees()
	q := s.Quaternion
	w.err = w.csv.Write([]string{
		fmt.Sprintf("%.4f", s.Time.Sub(w.start).Seconds()),
		fmt.Sprintf("%.2f", roll),
		fmt.Sprintf("%.2f", pitch),
		fmt.Sprintf("%.2f", yaw),
		fmt.Sprintf("%.4f", q.W),
		fmt.Sprintf("%.4f", q.X),
		fmt.Sprintf("%.4f", q.Y),
		fmt.Sprintf("%.4f", q.Z),
	})
	if w.err != nil {
		return w.err
	}
	w.csv.Flush()
	if w.err = w.csv.Error(); w.err != nil {
		return w.err
	}
	w.count++
	if w.count%50 == 0 {
		glog.V(1).Infof("captured %d samples", w.count)
	}
	return nil
}

// Count returns the number of rows written, excluding the header.
func (w *Writer) Count() uint64 {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.count
}

// Close flushes and closes the underlying writer if it's an io.Closer.
func (w *Writer) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.csv.Flush()
	err := w.csv.Error()
	if w.closer != nil {
		if e := w.closer.Close(); err == nil {
			err = e
		}
		w.closer = nil
	}
	glog.Infof("recorded %d samples", w.count)
	return err
}
