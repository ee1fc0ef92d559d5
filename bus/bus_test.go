package bus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
)

type fakePorts struct {
	regs   map[uint16]byte
	writes []byte
	err    error
}

func (f *fakePorts) In(port uint16) (byte, error) {
	if f.err != nil {
		return 0, f.err
	}

	return f.regs[port], nil
}

func (f *fakePorts) Out(port uint16, v byte) error {
	if f.err != nil {
		return f.err
	}
	f.regs[port] = v
	f.writes = append(f.writes, v)

	return nil
}

func TestStatusBits(t *testing.T) {
	assert.True(t, TXE.CanSend())
	assert.False(t, TXE.CanReceive())
	assert.True(t, RXF.CanReceive())
	assert.False(t, RXF.CanSend())
	assert.True(t, (TXE | RXF).CanSend())
	assert.Equal(t, Status(4), TXE)
	assert.Equal(t, Status(8), RXF)
}

func TestPortBus(t *testing.T) {
	io := &fakePorts{regs: map[uint16]byte{0xD9: byte(TXE | RXF), 0xD8: 'D'}}
	b := NewPortBus(io, 0xD8, 0xD9)

	st, err := b.Status()
	require.NoError(t, err)
	assert.True(t, st.CanSend())
	assert.True(t, st.CanReceive())

	v, err := b.ReadData()
	require.NoError(t, err)
	assert.Equal(t, byte('D'), v)

	require.NoError(t, b.WriteData('E'))
	assert.Equal(t, []byte{'E'}, io.writes)
	assert.Equal(t, uint16(0xD8), b.DataPort())
	assert.Equal(t, uint16(0xD9), b.StatusPort())
}

func TestPortBus_Errors(t *testing.T) {
	boom := errors.New("boom")
	b := NewPortBus(&fakePorts{regs: map[uint16]byte{}, err: boom}, 1, 2)

	_, err := b.Status()
	require.ErrorIs(t, err, boom)
	_, err = b.ReadData()
	require.ErrorIs(t, err, boom)
	require.ErrorIs(t, b.WriteData(0), boom)
}

type fakeSerial struct {
	rx      []byte
	tx      []byte
	cts     bool
	timeout time.Duration
}

func (f *fakeSerial) Read(p []byte) (int, error) {
	if len(f.rx) == 0 {
		return 0, nil // read timeout
	}
	n := copy(p, f.rx)
	f.rx = f.rx[n:]

	return n, nil
}

func (f *fakeSerial) Write(p []byte) (int, error) {
	f.tx = append(f.tx, p...)
	return len(p), nil
}

func (f *fakeSerial) SetReadTimeout(t time.Duration) error {
	f.timeout = t
	return nil
}

func (f *fakeSerial) GetModemStatusBits() (*serial.ModemStatusBits, error) {
	return &serial.ModemStatusBits{CTS: f.cts}, nil
}

func TestSerialBus_Lookahead(t *testing.T) {
	port := &fakeSerial{rx: []byte("E\r")}
	b, err := NewSerialBus(port, false, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultSerialPoll, port.timeout)

	_, err = b.ReadData()
	require.ErrorIs(t, err, ErrNoData)

	var got []byte
	for range 3 {
		st, err := b.Status()
		require.NoError(t, err)
		assert.True(t, st.CanSend())
		if st.CanReceive() {
			v, err := b.ReadData()
			require.NoError(t, err)
			got = append(got, v)
		}
	}
	assert.Equal(t, []byte("E\r"), got)

	// Status without a pending byte keeps polling without losing data.
	port.rx = []byte{'x'}
	st, err := b.Status()
	require.NoError(t, err)
	assert.True(t, st.CanReceive())
	st, err = b.Status()
	require.NoError(t, err)
	assert.True(t, st.CanReceive())
	v, err := b.ReadData()
	require.NoError(t, err)
	assert.Equal(t, byte('x'), v)
}

func TestSerialBus_CTSFlowControl(t *testing.T) {
	port := &fakeSerial{}
	b, err := NewSerialBus(port, true, time.Millisecond)
	require.NoError(t, err)

	st, err := b.Status()
	require.NoError(t, err)
	assert.False(t, st.CanSend())

	port.cts = true
	st, err = b.Status()
	require.NoError(t, err)
	assert.True(t, st.CanSend())

	require.NoError(t, b.WriteData('E'))
	assert.Equal(t, []byte{'E'}, port.tx)
	require.NoError(t, b.Close())
}
