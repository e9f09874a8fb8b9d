package spp

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type testStream struct {
	io.Reader
	writer  *io.PipeWriter
	written bytes.Buffer
	lock    sync.Mutex
}

func newTestStream() *testStream {
	r, w := io.Pipe()
	return &testStream{Reader: r, writer: w}
}

func (s *testStream) Write(p []byte) (int, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.written.Write(p)
}

func (s *testStream) inject(p []byte) {
	go func() {
		s.writer.Write(p)
		s.writer.Close()
	}()
}

func (s *testStream) bytes() []byte {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]byte{}, s.written.Bytes()...)
}

func TestStreamRun(t *testing.T) {
	ts := newTestStream()
	s := NewStream(ts)
	s.ReadSize = 5

	var frames []*Frame
	var drops []error
	s.Handler = HandleFrameFunc(func(ctx context.Context, f *Frame) {
		frames = append(frames, f)
	})
	s.Notifier = FrameDroppedFunc(func(ctx context.Context, err error) {
		drops = append(drops, err)
	})

	ts.inject(concat(
		[]byte{0x01, 0x02},
		frameBytes(MsgIMU, tiltedPayload...),
		[]byte{0xfd, 0x01, 0x00, 0xc3, 0x04, 0x83, 0x02},
		frameBytes(MsgSensorControl, byte(ControlAttachSuccess)),
		frameBytes(MsgIMU, identityPayload...)[:6],
	))
	err := s.Run(context.Background())
	require.Equal(t, ErrTransportClosed, err)

	require.Len(t, frames, 2)
	require.Equal(t, MsgIMU, frames[0].ID)
	require.Equal(t, tiltedPayload, frames[0].Payload)
	require.Equal(t, MsgSensorControl, frames[1].ID)
	require.Equal(t, []byte{byte(ControlAttachSuccess)}, frames[1].Payload)

	// one checksum error, then the truncated tail when the stream ends.
	require.Len(t, drops, 2)
	require.True(t, errors.Is(drops[0], ErrChecksum))
	require.True(t, errors.Is(drops[1], ErrFraming))

	stats := s.Stats()
	require.Equal(t, uint64(2), stats.Frames)
	require.Equal(t, uint64(1), stats.ChecksumErrors)
	require.Equal(t, uint64(1), stats.FramingErrors)
}

func TestStreamFlushesAtEOF(t *testing.T) {
	data := concat([]byte{0xfd, 0xff, 0x03}, frameBytes(MsgSensorControl, byte(ControlKeepAlive)))
	s := NewStream(struct {
		io.Reader
		io.Writer
	}{bytes.NewReader(data), io.Discard})

	var frames []*Frame
	s.Handler = HandleFrameFunc(func(ctx context.Context, f *Frame) {
		frames = append(frames, f)
	})
	err := s.Run(context.Background())
	require.Equal(t, ErrTransportClosed, err)
	require.Equal(t, []*Frame{NewControlFrame(ControlKeepAlive)}, frames)
	require.Equal(t, uint64(1), s.Stats().FramingErrors)
}

func TestStreamReadError(t *testing.T) {
	r, w := io.Pipe()
	s := NewStream(struct {
		io.Reader
		io.Writer
	}{r, io.Discard})
	failure := errors.New("link lost")
	go w.CloseWithError(failure)
	err := s.Run(context.Background())
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrTransportClosed))
	require.Contains(t, err.Error(), "link lost")
}

func TestStreamCancel(t *testing.T) {
	ts := newTestStream()
	defer ts.writer.Close()
	s := NewStream(ts)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, s.Run(ctx))
}

func TestStreamSend(t *testing.T) {
	ts := newTestStream()
	defer ts.writer.Close()
	s := NewStream(ts)
	require.NoError(t, s.SendControl(ControlKeepAlive))
	require.NoError(t, s.Send(NewFrame(MsgSetSpatialSensor, 1)))
	require.Equal(t, concat(
		[]byte{0xfd, 0x01, 0x00, 0xc3, 0x04, 0x83, 0x03},
		[]byte{0xfd, 0x01, 0x00, 0x7c, 0x01, 0x15, 0x5d},
	), ts.bytes())

	require.Equal(t, ErrPayloadTooLarge, s.Send(NewFrame(MsgIMU, make([]byte, MaxPayloadLen+1)...)))
	require.Len(t, ts.bytes(), 14)
}

func TestStreamSendCoverFrame(t *testing.T) {
	ts := newTestStream()
	defer ts.writer.Close()
	s := NewStream(ts).WithCoverage(CoverFrame)
	f := NewControlFrame(ControlKeepAlive)
	require.NoError(t, s.Send(f))
	expect, err := f.Encode(CoverFrame)
	require.NoError(t, err)
	require.Equal(t, expect, ts.bytes())
}
