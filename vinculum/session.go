package vinculum

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/arloliu/go-vinculum/bus"
	"github.com/arloliu/go-vinculum/logger"
)

// Monitor sentinels and delimiter.
const (
	// PromptSentinel is the idle prompt of the command monitor.
	PromptSentinel = `D:\>`
	// FailureSentinel reports that the previous command failed.
	FailureSentinel = "Command Failed"
	// LineDelimiter terminates every command and response line.
	LineDelimiter = '\r'
	// HandshakeProbe is echoed back verbatim by a healthy monitor.
	HandshakeProbe = "E"
)

// State is the client-side view of the monitor.
type State int32

const (
	// StateUninitialized requires Initialize before any command.
	StateUninitialized State = iota
	// StateSynced means the monitor is idle with no file open.
	StateSynced
	// StateFileOpen means a remote file has been opened.
	StateFileOpen
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateSynced:
		return "Synced"
	case StateFileOpen:
		return "FileOpen"
	default:
		return "Unknown"
	}
}

// Session drives one Vinculum command monitor.
//
// It owns the bus binding, the clock backend and one reusable response
// buffer. A Session is NOT goroutine-safe; callers must serialize access.
// State may be read concurrently.
type Session struct {
	cfg     *SessionConfig
	logger  logger.Logger
	tr      *Transport
	linebuf []byte
	state   atomic.Int32
	metrics SessionMetrics
}

// NewSession creates a Session over b. Call Initialize before issuing
// commands.
func NewSession(b bus.Bus, cfg *SessionConfig) (*Session, error) {
	if b == nil {
		return nil, errors.New("vinculum: bus is nil")
	}
	if cfg == nil {
		return nil, errors.New("vinculum: session config is nil")
	}

	s := &Session{
		cfg:     cfg,
		logger:  cfg.logger,
		linebuf: make([]byte, 0, cfg.lineBufferSize),
	}
	s.tr = NewTransport(b, cfg, &s.metrics)

	return s, nil
}

// State returns the current session state.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Metrics returns the session counters.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// Transport returns the byte-level transport of the session.
func (s *Session) Transport() *Transport {
	return s.tr
}

// Config returns the session configuration.
func (s *Session) Config() *SessionConfig {
	return s.cfg
}

// Initialize synchronizes with the monitor, selects printable ASCII mode and
// closes any file left open by a previous session.
//
// On failure the session stays uninitialized and the error wraps
// ErrSyncFailure.
func (s *Session) Initialize(ctx context.Context) error {
	s.setState(StateUninitialized)

	if err := s.Sync(ctx); err != nil {
		return err
	}

	for _, cmd := range []string{"ipa", "clf"} {
		if err := s.exec(ctx, cmd); err != nil {
			s.logger.Error("vinculum: initialization command failed", "cmd", cmd, "error", err)
			return fmt.Errorf("%w: %s: %w", ErrSyncFailure, cmd, err)
		}
	}

	s.setState(StateSynced)
	s.logger.Info("vinculum: session initialized")

	return nil
}

// DetectMedia sends an empty line and expects the prompt back. Any other
// outcome is reported as ErrNoMedia.
func (s *Session) DetectMedia(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.exec(ctx, ""); err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrNoMedia, err))
	}

	return nil
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// ready rejects commands on an uninitialized session.
func (s *Session) ready() error {
	if s.State() == StateUninitialized {
		return ErrNotInitialized
	}

	return nil
}

// fail records err and drops the session to uninitialized when err leaves
// the monitor in an unknown state. It returns err unchanged.
func (s *Session) fail(err error) error {
	if !degrades(err) {
		return err
	}

	if s.State() != StateUninitialized {
		s.metrics.incDegradeCount()
		s.logger.Error("vinculum: session degraded, re-initialization required", "error", err)
	}
	s.setState(StateUninitialized)

	return err
}

// exec sends cmd and confirms the prompt.
func (s *Session) exec(ctx context.Context, cmd string) error {
	if err := s.SendLine(ctx, cmd); err != nil {
		return err
	}

	return s.expectPrompt(ctx, cmd)
}

// expectPrompt reads one line and requires it to be the prompt, ignoring
// surrounding blanks.
func (s *Session) expectPrompt(ctx context.Context, cmd string) error {
	line, err := s.ReadLine(ctx, LineDelimiter, s.cfg.timeout)
	if err != nil {
		return err
	}

	if strings.TrimSpace(line) != PromptSentinel {
		s.metrics.incCommandFailCount()
		return newResponseError(cmd, line)
	}

	return nil
}
