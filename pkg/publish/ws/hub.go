// Package ws broadcasts samples to websocket clients.
package ws

import (
	"sync"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/headtrack/pkg/msgs"
	"github.com/robotalks/headtrack/pkg/pointer"
	"github.com/robotalks/headtrack/pkg/publish"
	"github.com/robotalks/headtrack/pkg/tracker"
)

// DefaultQueueSize is the number of pending messages per client.
const DefaultQueueSize = 16

// Hub is a tracker.Sink broadcasting samples to all connected clients.
// Clients may send a msgs.Calibrate message to calibrate.
type Hub struct {
	Device     string
	Format     string
	Mapper     *pointer.Mapper
	Calibrator publish.Calibrator
	QueueSize  int

	clients     map[*client]struct{}
	clientsLock sync.RWMutex
}

type client struct {
	conn    *websocket.Conn
	sendCh  chan []byte
	dropped uint64
}

// NewHub creates a Hub.
func NewHub(device, format string) *Hub {
	return &Hub{Device: device, Format: format, QueueSize: DefaultQueueSize}
}

// Handler returns the websocket handler to be served by net/http.
func (h *Hub) Handler() websocket.Handler {
	return websocket.Handler(h.serve)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.clientsLock.RLock()
	defer h.clientsLock.RUnlock()
	return len(h.clients)
}

// WriteSample implements tracker.Sink. Slow clients miss samples.
func (h *Hub) WriteSample(s tracker.Sample) error {
	data, err := msgs.Encode(h.Format, publish.SampleMessage(s, h.Device, h.Mapper))
	if err != nil {
		return err
	}
	h.clientsLock.RLock()
	defer h.clientsLock.RUnlock()
	for c := range h.clients {
		select {
		case c.sendCh <- data:
		default:
			c.dropped++
		}
	}
	return nil
}

func (h *Hub) serve(conn *websocket.Conn) {
	size := h.QueueSize
	if size <= 0 {
		size = DefaultQueueSize
	}
	c := &client{conn: conn, sendCh: make(chan []byte, size)}
	h.clientsLock.Lock()
	if h.clients == nil {
		h.clients = make(map[*client]struct{})
	}
	h.clients[c] = struct{}{}
	h.clientsLock.Unlock()
	glog.Infof("websocket client %s connected", conn.Request().RemoteAddr)

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		h.receive(c)
	}()

	func() {
		for {
			select {
			case <-doneCh:
				return
			case data := <-c.sendCh:
				if err := h.send(conn, data); err != nil {
					glog.V(2).Infof("websocket send error: %v", err)
					return
				}
			}
		}
	}()

	h.clientsLock.Lock()
	delete(h.clients, c)
	h.clientsLock.Unlock()
	conn.Close()
	<-doneCh
	glog.Infof("websocket client %s disconnected, %d samples dropped", conn.Request().RemoteAddr, c.dropped)
}

func (h *Hub) send(conn *websocket.Conn, data []byte) error {
	if h.Format == "" || h.Format == msgs.FormatJSON {
		return websocket.Message.Send(conn, string(data))
	}
	return websocket.Message.Send(conn, data)
}

func (h *Hub) receive(c *client) {
	for {
		var data []byte
		if err := websocket.Message.Receive(c.conn, &data); err != nil {
			return
		}
		if cal := h.Calibrator; cal != nil {
			if err := publish.HandleCalibrate(cal, h.Format, data); err != nil {
				glog.Warningf("websocket calibrate request: %v", err)
			}
		}
	}
}
