package bus

import "fmt"

// PortIO performs 8-bit port input and output.
type PortIO interface {
	In(port uint16) (byte, error)
	Out(port uint16, v byte) error
}

// PortBus is a Bus mapped onto a data port and a status port.
type PortBus struct {
	io         PortIO
	dataPort   uint16
	statusPort uint16
}

var _ Bus = (*PortBus)(nil)

// NewPortBus returns a Bus using dataPort and statusPort on io.
func NewPortBus(io PortIO, dataPort, statusPort uint16) *PortBus {
	return &PortBus{io: io, dataPort: dataPort, statusPort: statusPort}
}

// Status reads the status port.
func (b *PortBus) Status() (Status, error) {
	v, err := b.io.In(b.statusPort)
	if err != nil {
		return 0, fmt.Errorf("bus: read status port %#x: %w", b.statusPort, err)
	}

	return Status(v), nil
}

// ReadData reads the data port.
func (b *PortBus) ReadData() (byte, error) {
	v, err := b.io.In(b.dataPort)
	if err != nil {
		return 0, fmt.Errorf("bus: read data port %#x: %w", b.dataPort, err)
	}

	return v, nil
}

// WriteData writes the data port.
func (b *PortBus) WriteData(v byte) error {
	if err := b.io.Out(b.dataPort, v); err != nil {
		return fmt.Errorf("bus: write data port %#x: %w", b.dataPort, err)
	}

	return nil
}

// DataPort returns the data port address.
func (b *PortBus) DataPort() uint16 { return b.dataPort }

// StatusPort returns the status port address.
func (b *PortBus) StatusPort() uint16 { return b.statusPort }
