package transport

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"

	fx "github.com/robotalks/headtrack/pkg/framework"
)

// DialRFCOMM connects to the device, trying channels in order.
func DialRFCOMM(ctx context.Context, addr Address, channels ...int) (io.ReadWriteCloser, error) {
	if len(channels) == 0 {
		channels = DefaultChannels
	}
	return dialChannels(ctx, channels, func(ctx context.Context, ch int) (io.ReadWriteCloser, error) {
		return dialRFCOMM(ctx, addr, ch)
	})
}

func dialRFCOMM(ctx context.Context, addr Address, channel int) (io.ReadWriteCloser, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("rfcomm socket: %v", err)
	}
	sa := &unix.SockaddrRFCOMM{Channel: uint8(channel)}
	// bdaddr_t is little-endian.
	for i := range addr {
		sa.Addr[i] = addr[len(addr)-1-i]
	}
	err = fx.RunWithContextCancel(ctx, func() {
		unix.Shutdown(fd, unix.SHUT_RDWR)
	}, func() error {
		return unix.Connect(fd, sa)
	})
	if err != nil {
		unix.Close(fd)
		return nil, err
	}
	return socketFile(fd, fmt.Sprintf("rfcomm:%s/%d", addr, channel))
}

// socketFile wraps a connected socket, the fd is made non-blocking so the
// runtime poller handles it and Close interrupts a pending Read.
func socketFile(fd int, name string) (*os.File, error) {
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), name), nil
}
