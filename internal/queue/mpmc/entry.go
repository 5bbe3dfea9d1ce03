// Lock-free multi-producer multi-consumer ring queue joining the pipeline stages, power-of-two capacity
package mpmc

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"tailpost/internal/atomics"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"time"
)

// Creates a queue handle with one ring serving both views
func New[T any](namespace []string, initialCapacity uint64, minCapacity, maxCapacity int) (new *Queue[T], err error) {
	ring, err := allocRing[T](namespace, initialCapacity)
	if err != nil {
		return
	}

	new = &Queue[T]{}
	new.ActiveRead.Store(ring)
	new.ActiveWrite.Store(ring)
	new.handoff.Store(make(chan struct{}, 1))
	new.floor = minCapacity
	new.ceiling = maxCapacity

	return
}

// Swaps in a ring of the requested capacity. Producers move over
// immediately, consumers drain the sealed ring and flip on their own.
func (handle *Queue[T]) resize(newCapacity uint64) (err error) {
	// A previous migration still in flight, leave it alone
	if handle.ActiveRead.Load() != handle.ActiveWrite.Load() {
		return
	}

	oldRing := handle.ActiveWrite.Load()

	replacement, err := allocRing[T](oldRing.Namespace, newCapacity)
	if err != nil {
		return
	}

	// Fresh handoff channel for this migration round
	handle.handoff.Store(make(chan struct{}, 1))

	// Sealing forces producers to reload the write pointer
	oldRing.sealed.Store(true)

	// Whichever consumer pops the last sealed item completes the flip
	handle.ActiveWrite.Store(replacement)
	return
}

// Allocates a single ring, detached from any handle
func allocRing[T any](namespace []string, capacity uint64) (new *QueueInst[T], err error) {
	if (capacity & (capacity - 1)) != 0 {
		err = fmt.Errorf("ring capacity must be a power of two")
		return
	}
	if capacity < 2 {
		err = fmt.Errorf("ring capacity must be at least 2")
		return
	}

	ring := make([]slot[T], capacity)
	for position := uint64(0); position < capacity; position++ {
		ring[position].turn.Store(position)
	}

	new = &QueueInst[T]{
		Namespace: append(namespace, global.NSQueue),
		Size:      int(capacity),
		mask:      atomic.Uint64{},
		ring:      ring,
		wake:      make(chan struct{}, 1),
		Metrics:   &MetricStorage{},
	}
	new.mask.Store(capacity - 1)
	return
}

// Push that spins until accepted or the context ends. Size feeds the byte
// gauge the shutdown drain and the autoscaler watch.
func (handle *Queue[T]) PushBlocking(ctx context.Context, value T, size int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			if handle.Push(value) {
				handle.ActiveWrite.Load().Metrics.Bytes.Add(uint64(size))
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// Single push attempt, false means the ring is full
func (handle *Queue[T]) Push(value T) (success bool) {
	var ring *QueueInst[T]

	// Sealed rings belong to the drain side, reload until the write view settles
	for {
		ring = handle.ActiveWrite.Load()
		if !ring.sealed.Load() {
			break
		}
		runtime.Gosched()
	}

	ring.Metrics.PushAttempts.Add(1)

	var claim, turn uint64
	var claimed *slot[T]

	for {
		claim = ring.writePos.Load()
		claimed = &ring.ring[claim&ring.mask.Load()]
		turn = claimed.turn.Load()

		if turn == claim {
			if ring.writePos.CompareAndSwap(claim, claim+1) {
				ring.Metrics.PushSuccess.Add(1)
				break
			}
			ring.Metrics.PushCASRetries.Add(1)
		} else if turn < claim {
			// Slot still holds an unconsumed item, ring is full
			ring.Metrics.PushFull.Add(1)
			success = false
			return
		} else {
			// Another producer owns this slot, give it time to finish
			ring.Metrics.PushSeqAhead.Add(1)
			runtime.Gosched()
		}
	}

	claimed.item = value
	claimed.turn.Store(claim + 1)
	ring.Metrics.Depth.Add(1)

	// Wake one blocked consumer, never stall the producer
	select {
	case ring.wake <- struct{}{}:
	default:
	}

	success = true
	return
}

// Pops the next item in order. Blocks on an empty ring until a push or
// the context ends, false only on context end.
func (handle *Queue[T]) Pop(ctx context.Context) (out T, success bool) {
	var claim, turn uint64
	var claimed *slot[T]

	for {
		ring := handle.ActiveRead.Load()
		ring.Metrics.PopAttempts.Add(1)

		claim = ring.readPos.Load()
		claimed = &ring.ring[claim&ring.mask.Load()]
		turn = claimed.turn.Load()
		wantTurn := claim + 1

		if turn == wantTurn {
			if ring.readPos.CompareAndSwap(claim, claim+1) {
				out = claimed.item
				claimed.turn.Store(claim + ring.mask.Load() + 1)

				ring.Metrics.PopSuccess.Add(1)
				ok := atomics.Subtract(&ring.Metrics.Depth, 1, 4) // bounded retries, metric only
				if !ok {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
						"failed to decrement queue depth metric after successful pop\n")
				}

				// Last item out of a sealed ring completes the migration
				if ring.sealed.Load() {
					if ring.readPos.Load() == ring.writePos.Load() {
						flip := handle.handoff.Load().(chan struct{})

						select {
						case flip <- struct{}{}:
						default: // a signal is already pending, one is enough
						}
					}
				}

				success = true
				return
			}
			ring.Metrics.PopCASRetries.Add(1)
			continue
		}

		// Ring is empty, sleep until a producer or the migration wakes us
		if turn < wantTurn {
			ring.Metrics.PopEmpty.Add(1)
			flip := handle.handoff.Load().(chan struct{})

			select {
			case <-ctx.Done():
				success = false
				return
			case <-ring.wake:
				ring.Metrics.PopWaitSignals.Add(1)
				continue
			case <-flip:
				// Sealed ring is empty, move the read view to the replacement
				handle.ActiveRead.Store(handle.ActiveWrite.Load())
				continue
			}
		}

		// turn > wantTurn, another consumer got here first, retry
		ring.Metrics.PopSeqBehind.Add(1)
	}
}
