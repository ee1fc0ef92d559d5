package vinculum

import "sync/atomic"

// SessionMetrics contains atomic counters for a Session.
// They can back a prometheus CounterFunc.
type SessionMetrics struct {
	// CommandCount is the number of command lines sent.
	CommandCount atomic.Uint64
	// CommandFailCount is the number of commands answered with the failure
	// sentinel or unexpected text.
	CommandFailCount atomic.Uint64
	// ByteSendCount is the number of bytes written to the bus.
	ByteSendCount atomic.Uint64
	// ByteRecvCount is the number of bytes read from the bus.
	ByteRecvCount atomic.Uint64
	// TimeoutCount is the number of transport timeouts.
	TimeoutCount atomic.Uint64
	// SyncAttemptCount is the number of purge+handshake rounds.
	SyncAttemptCount atomic.Uint64
	// SyncFailCount is the number of Sync calls that gave up.
	SyncFailCount atomic.Uint64
	// PurgedByteCount is the number of stray bytes discarded by Purge.
	PurgedByteCount atomic.Uint64
	// DegradeCount is the number of times the session fell back to
	// uninitialized.
	DegradeCount atomic.Uint64
}

func (m *SessionMetrics) incCommandCount() { m.CommandCount.Add(1) }
func (m *SessionMetrics) incCommandFailCount() { m.CommandFailCount.Add(1) }
func (m *SessionMetrics) incByteSendCount() { m.ByteSendCount.Add(1) }
func (m *SessionMetrics) incByteRecvCount() { m.ByteRecvCount.Add(1) }
func (m *SessionMetrics) incTimeoutCount() { m.TimeoutCount.Add(1) }
func (m *SessionMetrics) incSyncAttemptCount() { m.SyncAttemptCount.Add(1) }
func (m *SessionMetrics) incSyncFailCount() { m.SyncFailCount.Add(1) }
func (m *SessionMetrics) addPurgedByteCount(n int) { m.PurgedByteCount.Add(uint64(n)) }
func (m *SessionMetrics) incDegradeCount() { m.DegradeCount.Add(1) }
