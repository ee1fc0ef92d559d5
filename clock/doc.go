// Package clock provides the elapsed-time test used to bound every wait on
// the handshake bus.
//
// Hosts that drive a Vinculum monitor expose one of two incompatible time
// sources: a fast periodic tick counter (2 ms per tick on typical CP/M
// boards) or a one-second counter maintained by the operating system. Both
// are wrapped behind the [Clock] interface so the transport never cares which
// one it has. The backend is chosen once, when a session is configured.
//
// A third backend, [SimClock], advances deterministically on every read and
// is meant for tests.
package clock
