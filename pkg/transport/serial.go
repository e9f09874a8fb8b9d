package transport

import (
	"io"

	"github.com/golang/glog"
	"github.com/jacobsa/go-serial/serial"
)

// OpenSerial opens a serial port, e.g. a bound /dev/rfcommN.
func OpenSerial(port string, baud int) (io.ReadWriteCloser, error) {
	opts := serial.OpenOptions{
		PortName:              port,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}
	rwc, err := serial.Open(opts)
	if err != nil {
		return nil, err
	}
	glog.Infof("serial port %s opened at %d baud", port, baud)
	return rwc, nil
}
