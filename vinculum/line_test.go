package vinculum

import (
	"context"
	"testing"

	"github.com/arloliu/go-vinculum/clock"
	"github.com/arloliu/go-vinculum/vinculumtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendLine(t *testing.T) {
	s, agent := newTestSession(t)

	require.NoError(t, s.SendLine(context.Background(), "ipa"))
	assert.Equal(t, []string{"ipa"}, agent.Commands())
	assert.Equal(t, uint64(4), s.Metrics().ByteSendCount.Load())
}

func TestSendLine_Stalled(t *testing.T) {
	s, agent := newTestSession(t)
	agent.SetStallTransmit(true)

	err := s.SendLine(context.Background(), "ipa")
	require.ErrorIs(t, err, ErrTransportTimeout)
	assert.Zero(t, s.Metrics().ByteSendCount.Load())
	assert.Equal(t, uint64(1), s.Metrics().TimeoutCount.Load())
	assert.Empty(t, agent.Commands())
}

func TestReadLine(t *testing.T) {
	s, agent := newTestSession(t)
	agent.InjectOutput([]byte("first\rsecond\r"))

	line, err := s.ReadLine(context.Background(), '\r', 1)
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = s.ReadLine(context.Background(), '\r', 1)
	require.NoError(t, err)
	assert.Equal(t, "second", line)
}

func TestReadLine_EmptyLine(t *testing.T) {
	s, agent := newTestSession(t)
	agent.InjectOutput([]byte("\r"))

	line, err := s.ReadLine(context.Background(), '\r', 1)
	require.NoError(t, err)
	assert.Empty(t, line)
}

func TestReadLine_TimeoutMidLine(t *testing.T) {
	clk := clock.NewSimClock(simUnitsPerSecond, 1)
	agent := vinculumtest.NewAgent()
	s, err := NewSession(agent, newTestConfig(t, clk))
	require.NoError(t, err)

	agent.InjectOutput([]byte(`D:\`))
	before := clk.Reads()

	line, err := s.ReadLine(context.Background(), '\r', 1)
	require.ErrorIs(t, err, ErrTransportTimeout)
	assert.Equal(t, `D:\`, line)

	// one read per received byte, then one second of polling
	reads := clk.Reads() - before
	assert.LessOrEqual(t, reads, uint64(3+1+simUnitsPerSecond+1))
	assert.GreaterOrEqual(t, reads, uint64(simUnitsPerSecond))
}

func TestReadLine_TooLong(t *testing.T) {
	s, agent := newTestSession(t, WithLineBufferSize(MinLineBufferSize))
	agent.InjectOutput([]byte("0123456789abcdefXYZ\r"))

	line, err := s.ReadLine(context.Background(), '\r', 1)
	require.ErrorIs(t, err, ErrLineTooLong)
	assert.Equal(t, "0123456789abcdef", line)
}

func TestReadLine_ExactlyBufferSize(t *testing.T) {
	s, agent := newTestSession(t, WithLineBufferSize(MinLineBufferSize))
	agent.InjectOutput([]byte("0123456789abcdef\r"))

	line, err := s.ReadLine(context.Background(), '\r', 1)
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdef", line)
}
