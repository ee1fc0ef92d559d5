package vinculum

import (
	"context"
	"errors"
	"testing"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/arloliu/go-vinculum/clock"
	"github.com/arloliu/go-vinculum/vinculumtest"
	"github.com/stretchr/testify/require"
)

// simUnitsPerSecond makes one simulated second last this many status polls.
const simUnitsPerSecond = 100

// newTestConfig creates a SessionConfig on a simulated clock that never
// sleeps between polls.
func newTestConfig(t *testing.T, clk clock.Clock, opts ...SessionOption) *SessionConfig {
	t.Helper()

	if clk == nil {
		clk = clock.NewSimClock(simUnitsPerSecond, 1)
	}

	defaults := []SessionOption{
		WithClock(clk),
		WithTimeout(MinTimeout),
		WithPurgeTimeout(MinTimeout),
		WithPollInterval(0),
	}

	cfg, err := NewSessionConfig(append(defaults, opts...)...)
	require.NoError(t, err)

	return cfg
}

// newTestSession creates a Session talking to a fresh simulated monitor.
func newTestSession(t *testing.T, opts ...SessionOption) (*Session, *vinculumtest.Agent) {
	t.Helper()

	agent := vinculumtest.NewAgent()
	s, err := NewSession(agent, newTestConfig(t, nil, opts...))
	require.NoError(t, err)

	return s, agent
}

// newReadySession creates an initialized Session.
func newReadySession(t *testing.T, opts ...SessionOption) (*Session, *vinculumtest.Agent) {
	t.Helper()

	s, agent := newTestSession(t, opts...)
	require.NoError(t, s.Initialize(context.Background()))
	require.Equal(t, StateSynced, s.State())

	return s, agent
}

var errBroken = errors.New("broken bus")

// brokenBus fails every operation.
type brokenBus struct{}

func (brokenBus) Status() (bus.Status, error) { return 0, errBroken }
func (brokenBus) ReadData() (byte, error)     { return 0, errBroken }
func (brokenBus) WriteData(byte) error        { return errBroken }
