package vinculum

import (
	"context"
	"fmt"
	"strconv"
)

// OpenRead opens name for reading. Any open file is closed first.
func (s *Session) OpenRead(ctx context.Context, name string) error {
	return s.open(ctx, "opr "+name, name)
}

// OpenWrite opens name for writing, creating it if needed. token is appended
// verbatim to the name; see TimestampToken. Any open file is closed first.
func (s *Session) OpenWrite(ctx context.Context, name, token string) error {
	return s.open(ctx, "opw "+name+token, name)
}

func (s *Session) open(ctx context.Context, cmd, name string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if name == "" {
		return fmt.Errorf("%w: empty file name", ErrInvalidArgument)
	}

	// A rejected close only means nothing was open.
	if err := s.exec(ctx, "clf"); err != nil && degrades(err) {
		return s.fail(err)
	}
	s.setState(StateSynced)

	if err := s.exec(ctx, cmd); err != nil {
		return s.fail(err)
	}
	s.setState(StateFileOpen)

	return nil
}

// Seek moves the position of the open file to offset.
func (s *Session) Seek(ctx context.Context, offset uint32) error {
	if err := s.ready(); err != nil {
		return err
	}

	return s.fail(s.exec(ctx, "sek "+strconv.FormatUint(uint64(offset), 10)))
}

// Read reads n bytes from the open file.
func (s *Session) Read(ctx context.Context, n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative read count %d", ErrInvalidArgument, n)
	}

	buf := make([]byte, n)
	got, err := s.ReadInto(ctx, buf)

	return buf[:got], err
}

// ReadInto fills buf from the open file using "rdf <len(buf)>". The payload
// is raw binary; each byte waits at most the session timeout. It returns the
// number of bytes received.
//
// Any reply other than the prompt after the payload fails with ErrOutOfSync
// and the session must be re-initialized.
func (s *Session) ReadInto(ctx context.Context, buf []byte) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return 0, nil
	}

	cmd := "rdf " + strconv.Itoa(len(buf))
	if err := s.SendLine(ctx, cmd); err != nil {
		return 0, s.fail(err)
	}

	for i := range buf {
		c, err := s.tr.ReceiveByteTimeout(ctx, s.cfg.timeout)
		if err != nil {
			return i, s.fail(fmt.Errorf("%s: byte %d of %d: %w", cmd, i, len(buf), err))
		}
		buf[i] = c
	}

	if err := s.expectPrompt(ctx, cmd); err != nil {
		return len(buf), s.fail(fmt.Errorf("%w: %w", ErrOutOfSync, err))
	}

	return len(buf), nil
}

// Write writes the first n bytes of buf to the open file using "wrf <n>".
// A rejected write, e.g. with no file open or the disk full, fails with
// ErrOutOfSync wrapping the response: the monitor may have taken the payload
// as command text, so the session must be re-initialized.
func (s *Session) Write(ctx context.Context, buf []byte, n int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if n < 0 || n > len(buf) {
		return fmt.Errorf("%w: write count %d with %d byte buffer", ErrInvalidArgument, n, len(buf))
	}
	if n == 0 {
		return nil
	}

	cmd := "wrf " + strconv.Itoa(n)
	if err := s.SendLine(ctx, cmd); err != nil {
		return s.fail(err)
	}

	for i := range n {
		if err := s.tr.SendByteTimeout(ctx, buf[i], s.cfg.timeout); err != nil {
			return s.fail(fmt.Errorf("%s: byte %d of %d: %w", cmd, i, n, err))
		}
	}

	if err := s.expectPrompt(ctx, cmd); err != nil {
		return s.fail(fmt.Errorf("%w: %w", ErrOutOfSync, err))
	}

	return nil
}

// Close closes the currently open file.
func (s *Session) Close(ctx context.Context) error {
	return s.close(ctx, "clf")
}

// CloseFile closes the named file.
func (s *Session) CloseFile(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty file name", ErrInvalidArgument)
	}

	return s.close(ctx, "clf "+name)
}

func (s *Session) close(ctx context.Context, cmd string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if err := s.exec(ctx, cmd); err != nil {
		return s.fail(err)
	}
	s.setState(StateSynced)

	return nil
}
