package bus

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Serial defaults for a VDIP1 jumpered for UART mode.
const (
	DefaultBaudRate     = 9600
	DefaultSerialPoll   = 10 * time.Millisecond
	serialLookaheadSize = 1
)

// SerialPort is the subset of serial.Port used by SerialBus.
type SerialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	SetReadTimeout(t time.Duration) error
	GetModemStatusBits() (*serial.ModemStatusBits, error)
}

// SerialBus emulates the status and data registers over a UART.
//
// RXF is derived from a one-byte lookahead read bounded by the poll timeout.
// TXE follows the CTS modem line when flow control is enabled, otherwise it
// is always set.
type SerialBus struct {
	port    SerialPort
	useCTS  bool
	pending [serialLookaheadSize]byte
	has     bool
	closer  func() error
}

var _ Bus = (*SerialBus)(nil)

// NewSerialBus wraps an already opened port. poll bounds each lookahead read.
func NewSerialBus(port SerialPort, useCTS bool, poll time.Duration) (*SerialBus, error) {
	if poll <= 0 {
		poll = DefaultSerialPoll
	}
	if err := port.SetReadTimeout(poll); err != nil {
		return nil, fmt.Errorf("bus: set serial read timeout: %w", err)
	}

	return &SerialBus{port: port, useCTS: useCTS}, nil
}

// OpenSerial opens the named serial device at baud 8N1 and returns a
// SerialBus over it. Close releases the device.
func OpenSerial(name string, baud int, useCTS bool) (*SerialBus, error) {
	if baud <= 0 {
		baud = DefaultBaudRate
	}

	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("bus: open serial %s: %w", name, err)
	}

	if useCTS {
		if err := port.SetRTS(true); err != nil {
			_ = port.Close()
			return nil, fmt.Errorf("bus: assert RTS on %s: %w", name, err)
		}
	}

	b, err := NewSerialBus(port, useCTS, DefaultSerialPoll)
	if err != nil {
		_ = port.Close()
		return nil, err
	}
	b.closer = port.Close

	return b, nil
}

// Status implements Bus.
func (b *SerialBus) Status() (Status, error) {
	var st Status

	if b.useCTS {
		bits, err := b.port.GetModemStatusBits()
		if err != nil {
			return 0, fmt.Errorf("bus: read modem status: %w", err)
		}
		if bits.CTS {
			st |= TXE
		}
	} else {
		st |= TXE
	}

	if !b.has {
		n, err := b.port.Read(b.pending[:])
		if err != nil {
			return 0, fmt.Errorf("bus: serial read: %w", err)
		}
		b.has = n == 1
	}
	if b.has {
		st |= RXF
	}

	return st, nil
}

// ReadData implements Bus. It returns ErrNoData when Status has not seen a
// byte.
func (b *SerialBus) ReadData() (byte, error) {
	if !b.has {
		return 0, ErrNoData
	}
	b.has = false

	return b.pending[0], nil
}

// WriteData implements Bus.
func (b *SerialBus) WriteData(v byte) error {
	if _, err := b.port.Write([]byte{v}); err != nil {
		return fmt.Errorf("bus: serial write: %w", err)
	}

	return nil
}

// Close closes the underlying device when the bus was created by OpenSerial.
func (b *SerialBus) Close() error {
	if b.closer == nil {
		return nil
	}

	return b.closer()
}
