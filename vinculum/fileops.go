package vinculum

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ReadFile copies the remote file name to w in chunks of the configured
// size and returns the number of bytes copied.
func (s *Session) ReadFile(ctx context.Context, name string, w io.Writer) (int64, error) {
	size, err := s.FileSize(ctx, name)
	if err != nil {
		return 0, err
	}

	if err := s.OpenRead(ctx, name); err != nil {
		return 0, err
	}

	buf := make([]byte, s.cfg.chunkSize)
	var copied int64

	for remaining := int64(size); remaining > 0; {
		chunk := buf
		if remaining < int64(len(chunk)) {
			chunk = chunk[:remaining]
		}

		n, err := s.ReadInto(ctx, chunk)
		if err != nil {
			return copied, s.abandon(ctx, fmt.Errorf("read %s: %w", name, err))
		}

		if _, err := w.Write(chunk[:n]); err != nil {
			return copied, s.abandon(ctx, fmt.Errorf("read %s: %w", name, err))
		}
		copied += int64(n)
		remaining -= int64(n)
	}

	s.logger.Debug("vinculum: file read", "name", name, "bytes", copied)

	return copied, s.Close(ctx)
}

// WriteFile creates or appends the remote file name with the content of r,
// stamped with modTime, and returns the number of bytes written.
func (s *Session) WriteFile(ctx context.Context, name string, r io.Reader, modTime time.Time) (int64, error) {
	if err := s.OpenWrite(ctx, name, TimestampToken(modTime)); err != nil {
		return 0, err
	}

	buf := make([]byte, s.cfg.chunkSize)
	var written int64

	for {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			if err := s.Write(ctx, buf, n); err != nil {
				return written, s.abandon(ctx, fmt.Errorf("write %s: %w", name, err))
			}
			written += int64(n)
		}

		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			break
		}
		if rerr != nil {
			return written, s.abandon(ctx, fmt.Errorf("write %s: %w", name, rerr))
		}
	}

	s.logger.Debug("vinculum: file written", "name", name, "bytes", written)

	return written, s.Close(ctx)
}

// abandon closes the open file after a failed transfer when the session is
// still usable, and returns err.
func (s *Session) abandon(ctx context.Context, err error) error {
	if s.State() == StateFileOpen {
		if cerr := s.Close(ctx); cerr != nil {
			s.logger.Warn("vinculum: close after failed transfer", "error", cerr)
		}
	}

	return err
}
