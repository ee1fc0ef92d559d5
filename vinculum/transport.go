package vinculum

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/arloliu/go-vinculum/clock"
	"github.com/arloliu/go-vinculum/internal/pool"
)

// noTimeout disables the clock bound of a wait.
const noTimeout = -1

// Transport moves single bytes over the handshake bus.
//
// Every wait polls the status register, checks the context on each
// iteration and pauses between unsuccessful polls. There is deliberately no
// single-poll read: a read either waits for data within a budget or fails.
//
// This type is NOT goroutine-safe.
type Transport struct {
	bus     bus.Bus
	clock   clock.Clock
	poll    time.Duration
	metrics *SessionMetrics
}

// NewTransport creates a Transport over b using the clock and poll interval
// of cfg. metrics may be nil.
func NewTransport(b bus.Bus, cfg *SessionConfig, metrics *SessionMetrics) *Transport {
	if metrics == nil {
		metrics = &SessionMetrics{}
	}

	return &Transport{
		bus:     b,
		clock:   cfg.clock,
		poll:    cfg.pollInterval,
		metrics: metrics,
	}
}

// SendByte waits, bounded only by ctx, for transmit-ready and writes c.
func (t *Transport) SendByte(ctx context.Context, c byte) error {
	return t.send(ctx, c, noTimeout)
}

// SendByteTimeout writes c, failing with ErrTransportTimeout when
// transmit-ready is not seen within seconds.
func (t *Transport) SendByteTimeout(ctx context.Context, c byte, seconds int) error {
	return t.send(ctx, c, seconds)
}

// ReceiveByteTimeout returns the next byte, failing with ErrTransportTimeout
// when data-available is not seen within seconds.
func (t *Transport) ReceiveByteTimeout(ctx context.Context, seconds int) (byte, error) {
	if err := t.waitFor(ctx, bus.Status.CanReceive, seconds); err != nil {
		return 0, err
	}

	c, err := t.bus.ReadData()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrBus, err)
	}
	t.metrics.incByteRecvCount()

	return c, nil
}

func (t *Transport) send(ctx context.Context, c byte, seconds int) error {
	if err := t.waitFor(ctx, bus.Status.CanSend, seconds); err != nil {
		return err
	}

	if err := t.bus.WriteData(c); err != nil {
		return fmt.Errorf("%w: %w", ErrBus, err)
	}
	t.metrics.incByteSendCount()

	return nil
}

// waitFor polls the status register until ready reports true. A negative
// seconds waits without a clock bound.
func (t *Transport) waitFor(ctx context.Context, ready func(bus.Status) bool, seconds int) error {
	start := t.clock.Now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		st, err := t.bus.Status()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBus, err)
		}
		if ready(st) {
			return nil
		}

		if seconds >= 0 && t.clock.Expired(start, seconds) {
			t.metrics.incTimeoutCount()
			return ErrTransportTimeout
		}

		if err := t.yield(ctx); err != nil {
			return err
		}
	}
}

func (t *Transport) yield(ctx context.Context) error {
	if t.poll <= 0 {
		runtime.Gosched()
		return nil
	}

	return pool.Sleep(ctx, t.poll)
}
