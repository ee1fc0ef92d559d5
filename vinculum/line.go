package vinculum

import (
	"context"
	"fmt"
)

// SendLine transmits text followed by the line delimiter. Each character is
// bounded by the session timeout; the first one not accepted aborts the rest
// with ErrTransportTimeout.
func (s *Session) SendLine(ctx context.Context, text string) error {
	s.metrics.incCommandCount()
	s.logger.Debug("vinculum: send", "cmd", text)

	for i := 0; i < len(text); i++ {
		if err := s.tr.SendByteTimeout(ctx, text[i], s.cfg.timeout); err != nil {
			return fmt.Errorf("send %q: %w", text, err)
		}
	}

	if err := s.tr.SendByteTimeout(ctx, LineDelimiter, s.cfg.timeout); err != nil {
		return fmt.Errorf("send %q: %w", text, err)
	}

	return nil
}

// ReadLine collects characters until terminator, which is not included.
// Each character waits at most seconds.
//
// On failure the returned text is whatever was collected so far; it must not
// be trusted. A line longer than the buffer fails with ErrLineTooLong.
func (s *Session) ReadLine(ctx context.Context, terminator byte, seconds int) (string, error) {
	s.linebuf = s.linebuf[:0]

	for {
		c, err := s.tr.ReceiveByteTimeout(ctx, seconds)
		if err != nil {
			return string(s.linebuf), fmt.Errorf("read line: %w", err)
		}
		if c == terminator {
			break
		}
		if len(s.linebuf) == cap(s.linebuf) {
			return string(s.linebuf), fmt.Errorf("%w (%d bytes)", ErrLineTooLong, cap(s.linebuf))
		}
		s.linebuf = append(s.linebuf, c)
	}

	line := string(s.linebuf)
	s.logger.Debug("vinculum: recv", "line", line)

	return line, nil
}
