package vinculum

import (
	"errors"
	"fmt"
	"time"

	"github.com/arloliu/go-vinculum/clock"
	"github.com/arloliu/go-vinculum/logger"
)

// Default values. Timeouts are whole seconds.
const (
	DefaultTimeout        = 5 // per byte, per line character, per handshake step
	DefaultPurgeTimeout   = 1 // silence that ends a purge
	DefaultSyncRetries    = 3
	DefaultLineBufferSize = 128
	DefaultChunkSize      = 128
	DefaultPollInterval   = 100 * time.Microsecond
)

// Limits enforced by the With* options.
const (
	MinTimeout = 1
	MaxTimeout = 120

	MaxSyncRetries = 31

	MinLineBufferSize = 16
	MaxLineBufferSize = 4096

	MaxChunkSize = 1 << 16

	MaxPollInterval = 100 * time.Millisecond
)

// SessionConfig holds the configuration of a Session. It is immutable once
// built by NewSessionConfig.
type SessionConfig struct {
	clock          clock.Clock
	timeout        int
	purgeTimeout   int
	syncRetries    int
	lineBufferSize int
	chunkSize      int
	pollInterval   time.Duration
	logger         logger.Logger
}

// NewSessionConfig creates a configuration from defaults and opts.
//
// Without WithClock the session uses a tick clock driven by the Go monotonic
// clock.
func NewSessionConfig(opts ...SessionOption) (*SessionConfig, error) {
	cfg := &SessionConfig{
		timeout:        DefaultTimeout,
		purgeTimeout:   DefaultPurgeTimeout,
		syncRetries:    DefaultSyncRetries,
		lineBufferSize: DefaultLineBufferSize,
		chunkSize:      DefaultChunkSize,
		pollInterval:   DefaultPollInterval,
		logger:         logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.clock == nil {
		cfg.clock = clock.NewTickClock(clock.SystemTicks())
	}

	return cfg, nil
}

// Clock returns the clock backend.
func (cfg *SessionConfig) Clock() clock.Clock { return cfg.clock }

// Timeout returns the per-operation timeout in seconds.
func (cfg *SessionConfig) Timeout() int { return cfg.timeout }

// PurgeTimeout returns the silence, in seconds, that ends a purge.
func (cfg *SessionConfig) PurgeTimeout() int { return cfg.purgeTimeout }

// SyncRetries returns the number of purge+handshake rounds in Sync.
func (cfg *SessionConfig) SyncRetries() int { return cfg.syncRetries }

// LineBufferSize returns the response line capacity in bytes.
func (cfg *SessionConfig) LineBufferSize() int { return cfg.lineBufferSize }

// ChunkSize returns the transfer size used by ReadFile and WriteFile.
func (cfg *SessionConfig) ChunkSize() int { return cfg.chunkSize }

// PollInterval returns the pause between unsuccessful status polls.
func (cfg *SessionConfig) PollInterval() time.Duration { return cfg.pollInterval }

// GetLogger returns the configured logger.
func (cfg *SessionConfig) GetLogger() logger.Logger { return cfg.logger }

// SessionOption is a functional option for configuring a SessionConfig.
type SessionOption interface {
	apply(*SessionConfig) error
}

type sessionOptFunc func(*SessionConfig) error

func (f sessionOptFunc) apply(cfg *SessionConfig) error { return f(cfg) }

// WithClock selects the clock backend.
func WithClock(c clock.Clock) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if c == nil {
			return errors.New("vinculum: clock must not be nil")
		}
		cfg.clock = c

		return nil
	})
}

// WithTimeout sets the default per-operation timeout in seconds.
func WithTimeout(seconds int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if seconds < MinTimeout || seconds > MaxTimeout {
			return fmt.Errorf("vinculum: timeout %ds out of range [%d, %d]", seconds, MinTimeout, MaxTimeout)
		}
		cfg.timeout = seconds

		return nil
	})
}

// WithPurgeTimeout sets the silence, in seconds, that ends a purge.
func WithPurgeTimeout(seconds int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if seconds < MinTimeout || seconds > MaxTimeout {
			return fmt.Errorf("vinculum: purge timeout %ds out of range [%d, %d]", seconds, MinTimeout, MaxTimeout)
		}
		cfg.purgeTimeout = seconds

		return nil
	})
}

// WithSyncRetries sets the number of purge+handshake rounds.
func WithSyncRetries(n int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if n < 1 || n > MaxSyncRetries {
			return fmt.Errorf("vinculum: sync retries %d out of range [1, %d]", n, MaxSyncRetries)
		}
		cfg.syncRetries = n

		return nil
	})
}

// WithLineBufferSize sets the response line capacity.
func WithLineBufferSize(size int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if size < MinLineBufferSize || size > MaxLineBufferSize {
			return fmt.Errorf("vinculum: line buffer size %d out of range [%d, %d]", size, MinLineBufferSize, MaxLineBufferSize)
		}
		cfg.lineBufferSize = size

		return nil
	})
}

// WithChunkSize sets the transfer size used by ReadFile and WriteFile.
func WithChunkSize(size int) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if size < 1 || size > MaxChunkSize {
			return fmt.Errorf("vinculum: chunk size %d out of range [1, %d]", size, MaxChunkSize)
		}
		cfg.chunkSize = size

		return nil
	})
}

// WithPollInterval sets the pause between unsuccessful status polls. Zero
// yields the processor instead of sleeping.
func WithPollInterval(d time.Duration) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if d < 0 || d > MaxPollInterval {
			return fmt.Errorf("vinculum: poll interval %v out of range [0, %v]", d, MaxPollInterval)
		}
		cfg.pollInterval = d

		return nil
	})
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) SessionOption {
	return sessionOptFunc(func(cfg *SessionConfig) error {
		if l == nil {
			return errors.New("vinculum: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
