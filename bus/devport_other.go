//go:build !linux

package bus

import "errors"

// DevPortPath is the Linux character device exposing the I/O port space.
const DevPortPath = "/dev/port"

// DevPort is only available on Linux.
type DevPort struct{}

var _ PortIO = (*DevPort)(nil)

// OpenDevPort always fails outside Linux.
func OpenDevPort() (*DevPort, error) {
	return nil, errors.New("bus: port I/O requires linux")
}

// In implements PortIO.
func (*DevPort) In(uint16) (byte, error) { return 0, errors.ErrUnsupported }

// Out implements PortIO.
func (*DevPort) Out(uint16, byte) error { return errors.ErrUnsupported }

// Close implements io.Closer.
func (*DevPort) Close() error { return nil }
