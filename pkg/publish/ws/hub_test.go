package ws

import (
	"encoding/json"
	"math"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/robotalks/headtrack/pkg/imu"
	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/pointer"
	"github.com/robotalks/headtrack/pkg/tracker"
)

type testCalibrator struct {
	lock       sync.Mutex
	calibrated int
	ref        *imu.EulerAngles
}

func (c *testCalibrator) Calibrate() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.calibrated++
	return nil
}

func (c *testCalibrator) SetReference(e imu.EulerAngles) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.ref = &e
}

func (c *testCalibrator) state() (int, *imu.EulerAngles) {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.calibrated, c.ref
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(time.Millisecond)
	}
	return true
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	return conn
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub("buds", msgs.FormatJSON)
	hub.Mapper = pointer.NewMapper(pointer.Size{CX: 1920, CY: 1080}, 0)
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()

	conn1, conn2 := dial(t, srv), dial(t, srv)
	defer conn2.Close()
	require.True(t, waitFor(func() bool { return hub.Clients() == 2 }))

	require.NoError(t, hub.WriteSample(tracker.Sample{
		Seq:      3,
		Time:     time.Unix(1, 0),
		Raw:      imu.EulerAngles{Yaw: math.Pi / 180},
		Relative: imu.EulerAngles{Yaw: math.Pi / 180},
	}))
	for _, conn := range []*websocket.Conn{conn1, conn2} {
		var data string
		require.NoError(t, websocket.Message.Receive(conn, &data))
		var s msgs.Sample
		require.NoError(t, json.Unmarshal([]byte(data), &s))
		require.Equal(t, "buds", s.Device)
		require.Equal(t, uint64(3), s.Seq)
		require.NotNil(t, s.Pointer)
		require.InDelta(t, 985, s.Pointer.X, 1e-6)
		require.InDelta(t, 540, s.Pointer.Y, 1e-6)
	}

	conn1.Close()
	require.True(t, waitFor(func() bool { return hub.Clients() == 1 }))
}

func TestHubSlowClient(t *testing.T) {
	hub := NewHub("buds", msgs.FormatJSON)
	hub.QueueSize = 1
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	defer conn.Close()
	require.True(t, waitFor(func() bool { return hub.Clients() == 1 }))

	// never blocks even when the client doesn't read.
	for i := 0; i < 1000; i++ {
		require.NoError(t, hub.WriteSample(tracker.Sample{Seq: uint64(i + 1)}))
	}
}

func TestHubCalibrate(t *testing.T) {
	hub := NewHub("buds", msgs.FormatJSON)
	cal := &testCalibrator{}
	hub.Calibrator = cal
	srv := httptest.NewServer(hub.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	defer conn.Close()

	require.NoError(t, websocket.Message.Send(conn, `{}`))
	require.True(t, waitFor(func() bool {
		n, _ := cal.state()
		return n == 1
	}))

	require.NoError(t, websocket.Message.Send(conn, `{"reference":{"yaw":-90}}`))
	require.True(t, waitFor(func() bool {
		_, ref := cal.state()
		return ref != nil
	}))
	n, ref := cal.state()
	require.Equal(t, 1, n)
	require.InDelta(t, -math.Pi/2, ref.Yaw, 1e-9)
}

func TestHubUnknownFormat(t *testing.T) {
	hub := NewHub("buds", "xml")
	require.Error(t, hub.WriteSample(tracker.Sample{}))
}
