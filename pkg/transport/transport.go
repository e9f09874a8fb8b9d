// Package transport opens the byte stream to the earbud.
package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// ErrUnsupported indicates the transport isn't available on this platform.
var ErrUnsupported = errors.New("transport not supported on this platform")

// DefaultChannels are the RFCOMM channels tried in order when the URL
// doesn't specify one.
var DefaultChannels = []int{27, 3, 4, 5, 6, 7, 8, 9, 10, 1, 2}

// DefaultBaudRate is used for serial ports without a baud parameter.
const DefaultBaudRate = 115200

// Open opens a transport by URL:
//
//	rfcomm://AA:BB:CC:DD:EE:FF?channel=27
//	serial:///dev/rfcomm0?baud=115200
//	file:///path/to/capture.bin
//	tcp://host:port
//	ws://host:port/path
func Open(ctx context.Context, rawURL string) (io.ReadWriteCloser, error) {
	if strings.HasPrefix(rawURL, rfcommScheme) {
		addr, channels, err := ParseRFCOMM(rawURL)
		if err != nil {
			return nil, err
		}
		return DialRFCOMM(ctx, addr, channels...)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid transport URL: %v", err)
	}
	switch u.Scheme {
	case "serial":
		baud, err := intParam(u.Query(), "baud", DefaultBaudRate)
		if err != nil {
			return nil, err
		}
		return OpenSerial(u.Path, baud)
	case "file":
		return OpenFile(u.Path)
	case "tcp":
		return DialTCP(ctx, u.Host)
	case "ws", "wss":
		return DialWebsocket(ctx, rawURL)
	default:
		return nil, fmt.Errorf("unknown transport URL scheme: %q", u.Scheme)
	}
}

// Address is a Bluetooth device address in display order.
type Address [6]byte

// ParseAddress parses AA:BB:CC:DD:EE:FF, "-" is also accepted as separator.
func ParseAddress(s string) (addr Address, err error) {
	if len(s) != 17 {
		return addr, fmt.Errorf("invalid bluetooth address: %q", s)
	}
	for i := 0; i < 6; i++ {
		if i > 0 && s[i*3-1] != ':' && s[i*3-1] != '-' {
			return addr, fmt.Errorf("invalid bluetooth address: %q", s)
		}
		v, err := strconv.ParseUint(s[i*3:i*3+2], 16, 8)
		if err != nil {
			return addr, fmt.Errorf("invalid bluetooth address: %q", s)
		}
		addr[i] = byte(v)
	}
	return addr, nil
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

const rfcommScheme = "rfcomm:"

// ParseRFCOMM parses rfcomm://AA:BB:CC:DD:EE:FF?channel=N, the "//" is
// optional. The address isn't a valid URL host so the URL is split by hand.
func ParseRFCOMM(rawURL string) (addr Address, channels []int, err error) {
	rest := strings.TrimPrefix(rawURL, rfcommScheme)
	rest = strings.TrimPrefix(rest, "//")
	host, query := rest, ""
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		host, query = rest[:i], rest[i+1:]
	}
	if addr, err = ParseAddress(strings.TrimSuffix(host, "/")); err != nil {
		return
	}
	params, err := url.ParseQuery(query)
	if err != nil {
		return addr, nil, fmt.Errorf("invalid transport URL: %v", err)
	}
	channels, err = channelsOf(params)
	return
}

func channelsOf(params url.Values) ([]int, error) {
	if params.Get("channel") == "" {
		return DefaultChannels, nil
	}
	ch, err := intParam(params, "channel", 0)
	if err != nil {
		return nil, err
	}
	if ch < 1 || ch > 30 {
		return nil, fmt.Errorf("invalid RFCOMM channel: %d", ch)
	}
	return []int{ch}, nil
}

func intParam(params url.Values, name string, def int) (int, error) {
	val := params.Get(name)
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, val)
	}
	return n, nil
}

// dialChannels tries channels in order and returns the first connection.
func dialChannels(ctx context.Context, channels []int, dial func(context.Context, int) (io.ReadWriteCloser, error)) (io.ReadWriteCloser, error) {
	var lastErr error
	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		conn, err := dial(ctx, ch)
		if err == nil {
			glog.Infof("connected on channel %d", ch)
			return conn, nil
		}
		glog.V(2).Infof("channel %d: %v", ch, err)
		lastErr = err
	}
	if lastErr == nil {
		return nil, errors.New("no channel to connect")
	}
	return nil, fmt.Errorf("connect failed on channels %v: %w", channels, lastErr)
}
