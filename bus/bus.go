// Package bus provides host-side access to the two-signal handshake bus of a
// Vinculum VNC1L controller.
//
// The controller exposes a data register and a status register. Two status
// bits matter: TXE ("ok to transmit", the host may write the data register)
// and RXF ("data available", the host may read it). The same pair of
// registers carries traffic in both directions.
//
// [PortBus] talks to the registers through port I/O (the VDIP1 parallel FIFO
// mode on an expansion board); [SerialBus] emulates them over a UART with
// RTS/CTS flow control (the VDIP1 UART mode).
package bus

import "errors"

// Status is the value of the status register.
type Status uint8

const (
	// TXE is set when the controller can accept a byte.
	TXE Status = 0o004
	// RXF is set when the controller has a byte for the host.
	RXF Status = 0o010
)

// CanSend reports whether the transmit-ready bit is set.
func (s Status) CanSend() bool { return s&TXE != 0 }

// CanReceive reports whether the data-available bit is set.
func (s Status) CanReceive() bool { return s&RXF != 0 }

// ErrNoData is returned by ReadData when no byte is pending.
var ErrNoData = errors.New("bus: no data available")

// Bus is the host view of the handshake bus.
//
// Implementations are polled: callers read Status until the bit they need
// is set, then call ReadData or WriteData exactly once. A Bus is not safe for
// concurrent use.
type Bus interface {
	Status() (Status, error)
	ReadData() (byte, error)
	WriteData(b byte) error
}
