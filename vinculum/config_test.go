package vinculum

import (
	"testing"
	"time"

	"github.com/arloliu/go-vinculum/clock"
	"github.com/arloliu/go-vinculum/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionConfig_Defaults(t *testing.T) {
	cfg, err := NewSessionConfig()
	require.NoError(t, err)

	assert.IsType(t, &clock.TickClock{}, cfg.Clock())
	assert.Equal(t, DefaultTimeout, cfg.Timeout())
	assert.Equal(t, DefaultPurgeTimeout, cfg.PurgeTimeout())
	assert.Equal(t, DefaultSyncRetries, cfg.SyncRetries())
	assert.Equal(t, DefaultLineBufferSize, cfg.LineBufferSize())
	assert.Equal(t, DefaultChunkSize, cfg.ChunkSize())
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval())
	assert.NotNil(t, cfg.GetLogger())
}

func TestNewSessionConfig_Options(t *testing.T) {
	clk := clock.NewSimClock(10, 1)
	l := logger.NewMockLogger()

	cfg, err := NewSessionConfig(
		WithClock(clk),
		WithTimeout(10),
		WithPurgeTimeout(2),
		WithSyncRetries(5),
		WithLineBufferSize(256),
		WithChunkSize(512),
		WithPollInterval(time.Millisecond),
		WithLogger(l),
	)
	require.NoError(t, err)

	assert.Same(t, clk, cfg.Clock())
	assert.Equal(t, 10, cfg.Timeout())
	assert.Equal(t, 2, cfg.PurgeTimeout())
	assert.Equal(t, 5, cfg.SyncRetries())
	assert.Equal(t, 256, cfg.LineBufferSize())
	assert.Equal(t, 512, cfg.ChunkSize())
	assert.Equal(t, time.Millisecond, cfg.PollInterval())
	assert.Same(t, l, cfg.GetLogger())
}

func TestNewSessionConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  SessionOption
	}{
		{"nil clock", WithClock(nil)},
		{"timeout too small", WithTimeout(MinTimeout - 1)},
		{"timeout too large", WithTimeout(MaxTimeout + 1)},
		{"purge timeout", WithPurgeTimeout(0)},
		{"sync retries zero", WithSyncRetries(0)},
		{"sync retries too many", WithSyncRetries(MaxSyncRetries + 1)},
		{"line buffer too small", WithLineBufferSize(MinLineBufferSize - 1)},
		{"line buffer too large", WithLineBufferSize(MaxLineBufferSize + 1)},
		{"chunk size zero", WithChunkSize(0)},
		{"chunk size too large", WithChunkSize(MaxChunkSize + 1)},
		{"negative poll", WithPollInterval(-time.Microsecond)},
		{"poll too long", WithPollInterval(MaxPollInterval + time.Millisecond)},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewSessionConfig(tt.opt)
			require.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}
