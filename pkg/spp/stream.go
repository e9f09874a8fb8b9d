package spp

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/golang/glog"
)

// FrameHandler is called when a frame is received.
type FrameHandler interface {
	HandleFrame(context.Context, *Frame)
}

// HandleFrameFunc is func type of FrameHandler.
type HandleFrameFunc func(context.Context, *Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, frame *Frame) {
	f(ctx, frame)
}

// DropNotifier is called when a frame attempt is dropped.
type DropNotifier interface {
	FrameDropped(context.Context, error)
}

// FrameDroppedFunc is func type of DropNotifier.
type FrameDroppedFunc func(context.Context, error)

// FrameDropped implements DropNotifier.
func (f FrameDroppedFunc) FrameDropped(ctx context.Context, err error) {
	f(ctx, err)
}

// DefaultReadSize is the size of the read buffer.
const DefaultReadSize = 256

// Stream sends/receives frames over a byte stream.
type Stream struct {
	ReadWriter io.ReadWriter
	Handler    FrameHandler
	Notifier   DropNotifier
	ReadSize   int

	parser    Parser
	stats     Stats
	statsLock sync.RWMutex
	sendLock  sync.Mutex
}

// NewStream creates a Stream.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{ReadWriter: rw, ReadSize: DefaultReadSize}
}

// WithCoverage sets the checksum coverage, must be called before Run.
func (s *Stream) WithCoverage(cov Coverage) *Stream {
	s.parser.Coverage = cov
	return s
}

// WithMaxPayload limits the accepted payload length, must be called before Run.
func (s *Stream) WithMaxPayload(n int) *Stream {
	s.parser.MaxPayload = n
	return s
}

// Stats gets the decoder counters.
func (s *Stream) Stats() Stats {
	s.statsLock.RLock()
	defer s.statsLock.RUnlock()
	return s.stats
}

// Send sends a frame.
func (s *Stream) Send(f *Frame) error {
	b, err := f.Encode(s.parser.Coverage)
	if err != nil {
		return err
	}
	s.sendLock.Lock()
	defer s.sendLock.Unlock()
	glog.V(4).Infof("SEND id=0x%02x % x", f.ID, f.Payload)
	_, err = s.ReadWriter.Write(b)
	return err
}

// SendControl sends a MsgSensorControl frame.
func (s *Stream) SendControl(ctl SensorControl) error {
	return s.Send(NewControlFrame(ctl))
}

// Run reads the stream until the context is cancelled or the stream ends.
// The returned error wraps ErrTransportClosed when the stream ends.
func (s *Stream) Run(ctx context.Context) error {
	chunkCh, errCh := make(chan []byte), make(chan error, 1)
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readLoop(subCtx, chunkCh, errCh)
	for {
		select {
		case chunk := <-chunkCh:
			s.apply(ctx, s.parser.Feed(chunk))
		case err := <-errCh:
			s.apply(ctx, s.parser.Reset())
			if err == io.EOF {
				return ErrTransportClosed
			}
			return fmt.Errorf("%w: %v", ErrTransportClosed, err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *Stream) readLoop(ctx context.Context, chunkCh chan []byte, errCh chan error) {
	size := s.ReadSize
	if size <= 0 {
		size = DefaultReadSize
	}
	for {
		buf := make([]byte, size)
		n, err := s.ReadWriter.Read(buf)
		if n > 0 {
			select {
			case chunkCh <- buf[:n]:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			errCh <- err
			return
		}
	}
}

func (s *Stream) apply(ctx context.Context, pr ParseResult) {
	s.statsLock.Lock()
	s.stats = s.parser.Stats()
	s.statsLock.Unlock()

	for _, err := range pr.Dropped {
		glog.V(2).Infof("DROP %v", err)
		if n := s.Notifier; n != nil {
			n.FrameDropped(ctx, err)
		}
	}
	for _, f := range pr.Frames {
		glog.V(4).Infof("RECV id=0x%02x flags=0x%02x len=%d", f.ID, f.Flags, len(f.Payload))
		if h := s.Handler; h != nil {
			h.HandleFrame(ctx, f)
		}
	}
}
