package transport

import (
	"context"
	"io"
	"net"

	"golang.org/x/net/websocket"

	fx "github.com/robotalks/headtrack/pkg/framework"
)

// Relays carry the raw earbud stream from a bridge on another host,
// e.g. a phone forwarding the RFCOMM channel.

// DialTCP connects a relay streaming raw bytes over TCP.
func DialTCP(ctx context.Context, addr string) (io.ReadWriteCloser, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", addr)
}

// DialWebsocket connects a relay sending stream chunks as websocket
// messages. Writes are sent as binary messages.
func DialWebsocket(ctx context.Context, rawURL string) (io.ReadWriteCloser, error) {
	conf, err := websocket.NewConfig(rawURL, "http://localhost/")
	if err != nil {
		return nil, err
	}
	var conn *websocket.Conn
	err = fx.RunWithContextCancel(ctx, nil, func() (e error) {
		conn, e = websocket.DialConfig(conf)
		return
	})
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		return nil, err
	}
	conn.PayloadType = websocket.BinaryFrame
	return conn, nil
}
