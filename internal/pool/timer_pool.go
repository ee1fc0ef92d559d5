// Package pool recycles the timers used to pace bus poll loops.
package pool

import (
	"context"
	"sync"
	"time"
)

var timerPool = sync.Pool{
	New: func() any {
		t := time.NewTimer(time.Hour)
		t.Stop()

		return t
	},
}

// Sleep pauses for d or until ctx is done, whichever comes first, and
// returns ctx.Err() in the latter case. The timer is taken from and returned
// to a shared pool, so a poll loop calling Sleep on every miss does not
// allocate.
func Sleep(ctx context.Context, d time.Duration) error {
	t, _ := timerPool.Get().(*time.Timer)
	t.Reset(d)
	defer func() {
		// Go 1.23 timers drop a pending tick on Stop, so the pooled timer
		// is clean for the next Reset.
		t.Stop()
		timerPool.Put(t)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
