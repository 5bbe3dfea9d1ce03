package atomics

import (
	"sync/atomic"
	"time"
)

// Subtracts value from the counter without going below zero. A counter
// already at zero counts as success. CAS conflicts retry up to
// maxRetries times with doubling sleeps, uncapped.
func Subtract(source *atomic.Uint64, value uint64, maxRetries int) (success bool) {
	pause := 10 * time.Microsecond

	for attempt := 0; attempt < maxRetries; attempt++ {
		current := source.Load()
		if current == 0 {
			success = true
			return
		}

		next := uint64(0)
		if current > value {
			next = current - value
		}

		if source.CompareAndSwap(current, next) {
			success = true
			return
		}

		// Another writer got between the load and the swap
		time.Sleep(pause)
		pause *= 2
	}

	return
}
