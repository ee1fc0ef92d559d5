package vinculum

import (
	"errors"
	"fmt"
)

// Sentinel errors, matched with errors.Is.
var (
	// ErrTransportTimeout means the bus showed no activity within the budget.
	ErrTransportTimeout = errors.New("vinculum: transport timeout")
	// ErrProtocolMismatch means a response matched no expected sentinel.
	ErrProtocolMismatch = errors.New("vinculum: unexpected response")
	// ErrCommandFailed means the monitor answered with the failure sentinel.
	ErrCommandFailed = errors.New("vinculum: command failed")
	// ErrNotFound is returned by directory queries for a missing name.
	ErrNotFound = fmt.Errorf("%w: no such file", ErrCommandFailed)
	// ErrSyncFailure means the echo handshake never succeeded.
	ErrSyncFailure = errors.New("vinculum: cannot synchronize with device")
	// ErrOutOfSync means a raw payload was exchanged but the monitor did not
	// confirm it with the prompt. The payload may have been parsed as
	// command text.
	ErrOutOfSync = errors.New("vinculum: payload out of sync")
	// ErrLineTooLong means a response line overflowed the line buffer.
	ErrLineTooLong = errors.New("vinculum: response line exceeds buffer")
	// ErrNoMedia means no prompt came back from the presence probe.
	ErrNoMedia = errors.New("vinculum: no media detected")
	// ErrNotInitialized means the session must be (re)initialized first.
	ErrNotInitialized = errors.New("vinculum: session not initialized")
	// ErrBus wraps I/O errors reported by the bus itself.
	ErrBus = errors.New("vinculum: bus error")
	// ErrInvalidArgument reports a caller error detected before any I/O.
	ErrInvalidArgument = errors.New("vinculum: invalid argument")
)

// ResponseError carries the raw response text of a rejected command.
type ResponseError struct {
	// Command is the command line as sent, without the delimiter.
	Command string
	// Response is the response line that was received.
	Response string
	// Err is ErrCommandFailed or ErrProtocolMismatch.
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%v: %q answered %q", e.Err, e.Command, e.Response)
}

func (e *ResponseError) Unwrap() error {
	return e.Err
}

func newResponseError(cmd, resp string) *ResponseError {
	err := ErrProtocolMismatch
	if resp == FailureSentinel {
		err = ErrCommandFailed
	}

	return &ResponseError{Command: cmd, Response: resp, Err: err}
}

// degrades reports whether err leaves the remote monitor in an unknown
// state.
func degrades(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrSyncFailure), errors.Is(err, ErrOutOfSync):
		return true
	case errors.Is(err, ErrCommandFailed),
		errors.Is(err, ErrProtocolMismatch),
		errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrNotInitialized):
		return false
	default:
		return true
	}
}
