// Package vinculum is a host-side client for the ASCII command monitor of an
// FTDI Vinculum VNC1L USB host controller (as found on the VDIP1 module).
//
// The controller owns the USB stack and the FAT filesystem of the attached
// flash drive. The host only exchanges carriage-return terminated text
// commands and responses with it, over a two-signal handshake bus modelled
// by [bus.Bus].
//
// # Layers
//
//   - [Transport] moves single bytes, each wait bounded by a [clock.Clock].
//   - [Session.SendLine] and [Session.ReadLine] exchange delimited lines
//     through one reusable, bounded line buffer.
//   - [Session.Purge], [Session.Handshake] and [Session.Sync] recover a known
//     state after an abrupt disconnect: drain stray output, then echo-test.
//   - The remaining Session methods implement the command vocabulary: media
//     detection, directory queries, file open/seek/read/write/close and
//     directory navigation.
//
// # Typical usage
//
//	cfg, _ := vinculum.NewSessionConfig(
//	    vinculum.WithClock(clock.NewTickClock(clock.SystemTicks())),
//	)
//	s, _ := vinculum.NewSession(b, cfg)
//	if err := s.Initialize(ctx); err != nil { ... }
//	if err := s.DetectMedia(ctx); err != nil { ... }
//	size, err := s.FileSize(ctx, "README.TXT")
//
// # Half-duplex discipline
//
// Exactly one command exchange is outstanding at a time and a Session is not
// safe for concurrent use. At most one remote file is open: every open
// force-closes first.
//
// # Failure handling
//
// A transport timeout, bus error, oversized response line or cancelled
// context leaves the remote monitor in an unknown state. The session then
// drops back to [StateUninitialized] and every command returns
// [ErrNotInitialized] until [Session.Initialize] succeeds again. A
// "Command Failed" response ([ErrCommandFailed]) or unexpected text
// ([ErrProtocolMismatch]) is an ordinary result and leaves the session usable,
// except after a raw rdf/wrf payload: there any reply other than the prompt
// is reported as [ErrOutOfSync] and degrades the session.
package vinculum
