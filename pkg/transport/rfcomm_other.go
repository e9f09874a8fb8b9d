//go:build !linux

package transport

import (
	"context"
	"io"
)

// DialRFCOMM is only available on Linux, bind the device to a serial port
// elsewhere.
func DialRFCOMM(ctx context.Context, addr Address, channels ...int) (io.ReadWriteCloser, error) {
	return nil, ErrUnsupported
}
