// Helpers for coordinating on shared atomic counters
package atomics

import (
	"sync/atomic"
	"time"
)

// Blocks until the counter reads zero three times in a row or the
// timeout passes. Polling backs off from 50ms up to 1s. Returns the
// last observed value either way.
func WaitUntilZero(value *atomic.Uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	const requiredStreak = 3
	const maxBackoff = time.Second

	backoff := 50 * time.Millisecond
	deadline := time.Now().Add(timeout)

	streak := 0
	for {
		lastValue = value.Load()
		if lastValue == 0 {
			streak++
			if streak >= requiredStreak {
				reachedZero = true
				return
			}
		} else {
			// One non-zero read voids the whole streak
			streak = 0
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		if backoff > remaining {
			time.Sleep(remaining)
		} else {
			time.Sleep(backoff)
		}

		if backoff < maxBackoff {
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}
