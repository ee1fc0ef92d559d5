package vinculum

import (
	"context"
	"errors"
	"fmt"
)

// maxDirDepth bounds ChangeDirRoot in case the monitor never reports the
// root.
const maxDirDepth = 64

// FileSize returns the length of name using "dir <name>". A missing name
// returns ErrNotFound.
func (s *Session) FileSize(ctx context.Context, name string) (uint32, error) {
	fields, err := s.dirQuery(ctx, "dir "+name, name)
	if err != nil {
		return 0, err
	}

	size, decErr := decodeFileSize(fields)
	if err := s.expectPrompt(ctx, "dir "+name); err != nil {
		return 0, s.fail(err)
	}
	if decErr != nil {
		s.metrics.incCommandFailCount()
		return 0, decErr
	}

	return size, nil
}

// FileDate returns the modification date and time words of name using
// "dirt <name>". A missing name returns ErrNotFound.
func (s *Session) FileDate(ctx context.Context, name string) (DirTimestamp, error) {
	fields, err := s.dirQuery(ctx, "dirt "+name, name)
	if err != nil {
		return DirTimestamp{}, err
	}

	ts, decErr := decodeDirTimestamp(fields)
	if err := s.expectPrompt(ctx, "dirt "+name); err != nil {
		return DirTimestamp{}, s.fail(err)
	}
	if decErr != nil {
		s.metrics.incCommandFailCount()
		return DirTimestamp{}, decErr
	}

	return ts, nil
}

// dirQuery sends cmd, discards the leading blank line and returns the
// fields following the name on the entry line.
func (s *Session) dirQuery(ctx context.Context, cmd, name string) (string, error) {
	if err := s.ready(); err != nil {
		return "", err
	}
	if name == "" {
		return "", fmt.Errorf("%w: empty file name", ErrInvalidArgument)
	}

	if err := s.SendLine(ctx, cmd); err != nil {
		return "", s.fail(err)
	}

	if _, err := s.ReadLine(ctx, LineDelimiter, s.cfg.timeout); err != nil {
		return "", s.fail(err)
	}

	line, err := s.ReadLine(ctx, LineDelimiter, s.cfg.timeout)
	if err != nil {
		return "", s.fail(err)
	}
	if line == FailureSentinel {
		s.metrics.incCommandFailCount()
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	_, fields := splitEntry(line)

	return fields, nil
}

// ChangeDir enters the subdirectory name, one level at a time. Only the
// exact prompt counts as success; any other text is returned in a
// *ResponseError.
func (s *Session) ChangeDir(ctx context.Context, name string) error {
	if err := s.ready(); err != nil {
		return err
	}

	cmd := "cd " + name
	if err := s.SendLine(ctx, cmd); err != nil {
		return s.fail(err)
	}

	line, err := s.ReadLine(ctx, LineDelimiter, s.cfg.timeout)
	if err != nil {
		return s.fail(err)
	}
	if line != PromptSentinel {
		s.metrics.incCommandFailCount()
		s.logger.Warn("vinculum: change directory rejected", "dir", name, "response", line)

		return newResponseError(cmd, line)
	}

	return nil
}

// ChangeDirUp moves to the parent directory. At the root the monitor answers
// with the failure sentinel and ErrCommandFailed is returned.
func (s *Session) ChangeDirUp(ctx context.Context) error {
	if err := s.ready(); err != nil {
		return err
	}

	const cmd = "cd .."
	if err := s.SendLine(ctx, cmd); err != nil {
		return s.fail(err)
	}

	line, err := s.ReadLine(ctx, LineDelimiter, s.cfg.timeout)
	if err != nil {
		return s.fail(err)
	}
	if line == FailureSentinel {
		return newResponseError(cmd, line)
	}

	return nil
}

// ChangeDirRoot climbs with ChangeDirUp until the monitor refuses. Errors
// other than ErrCommandFailed are returned.
func (s *Session) ChangeDirRoot(ctx context.Context) error {
	for range maxDirDepth {
		err := s.ChangeDirUp(ctx)
		if errors.Is(err, ErrCommandFailed) {
			return nil
		}
		if err != nil {
			return err
		}
	}

	return fmt.Errorf("%w: still not at root after %d levels", ErrProtocolMismatch, maxDirDepth)
}
