package vinculum

import (
	"context"
	"errors"
	"fmt"
)

// Purge reads and discards pending bytes until the bus stays silent for
// seconds. It returns the number of bytes discarded.
func (s *Session) Purge(ctx context.Context, seconds int) (int, error) {
	n := 0
	for {
		_, err := s.tr.ReceiveByteTimeout(ctx, seconds)
		if errors.Is(err, ErrTransportTimeout) {
			break
		}
		if err != nil {
			return n, err
		}
		n++
	}

	if n > 0 {
		s.metrics.addPurgedByteCount(n)
		s.logger.Debug("vinculum: purged stray bytes", "count", n)
	}

	return n, nil
}

// Handshake sends the probe and requires it to be echoed back exactly.
func (s *Session) Handshake(ctx context.Context) error {
	if err := s.SendLine(ctx, HandshakeProbe); err != nil {
		return err
	}

	line, err := s.ReadLine(ctx, LineDelimiter, s.cfg.timeout)
	if err != nil {
		return err
	}
	if line != HandshakeProbe {
		return newResponseError(HandshakeProbe, line)
	}

	return nil
}

// Sync performs up to SyncRetries rounds of purge and handshake and succeeds
// on the first echo. It does not change the session state on success; on
// failure the session degrades and the error wraps ErrSyncFailure and the
// last handshake error.
func (s *Session) Sync(ctx context.Context) error {
	var lastErr error

	for round := 1; round <= s.cfg.syncRetries; round++ {
		s.metrics.incSyncAttemptCount()

		if _, err := s.Purge(ctx, s.cfg.purgeTimeout); err != nil {
			lastErr = err
		} else if lastErr = s.Handshake(ctx); lastErr == nil {
			return nil
		}

		if ctx.Err() != nil {
			break
		}

		s.logger.Warn("vinculum: sync round failed",
			"round", round,
			"maxRound", s.cfg.syncRetries,
			"error", lastErr,
		)
	}

	s.metrics.incSyncFailCount()

	return s.fail(fmt.Errorf("%w: %w", ErrSyncFailure, lastErr))
}
