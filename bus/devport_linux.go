//go:build linux

package bus

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// DevPortPath is the Linux character device exposing the I/O port space.
const DevPortPath = "/dev/port"

// DevPort is a PortIO backed by /dev/port. Opening it requires
// CAP_SYS_RAWIO.
type DevPort struct {
	fd int
}

var _ PortIO = (*DevPort)(nil)

// OpenDevPort opens DevPortPath for reading and writing.
func OpenDevPort() (*DevPort, error) {
	fd, err := unix.Open(DevPortPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("bus: open %s: %w", DevPortPath, err)
	}

	return &DevPort{fd: fd}, nil
}

// In reads one byte from port.
func (p *DevPort) In(port uint16) (byte, error) {
	var buf [1]byte
	n, err := unix.Pread(p.fd, buf[:], int64(port))
	if err != nil {
		return 0, err
	}
	if n != 1 {
		return 0, fmt.Errorf("bus: short read on port %#x", port)
	}

	return buf[0], nil
}

// Out writes one byte to port.
func (p *DevPort) Out(port uint16, v byte) error {
	n, err := unix.Pwrite(p.fd, []byte{v}, int64(port))
	if err != nil {
		return err
	}
	if n != 1 {
		return fmt.Errorf("bus: short write on port %#x", port)
	}

	return nil
}

// Close releases the device.
func (p *DevPort) Close() error {
	return unix.Close(p.fd)
}
