package mpmc

import "sync/atomic"

// One ring position. The turn sequence decides whether the slot is free
// for a producer, holds an item for a consumer, or is mid handoff.
type slot[T any] struct {
	turn atomic.Uint64
	item T
}

type QueueInst[T any] struct {
	Namespace []string
	Size      int
	mask      atomic.Uint64
	ring      []slot[T]
	readPos   atomic.Uint64
	writePos  atomic.Uint64
	wake      chan struct{} // Nudges one blocked consumer after a push
	sealed    atomic.Bool   // Set during capacity migration, producers must reload the write pointer
	Metrics   *MetricStorage
}

// Handle holding the split read/write views of one pipeline queue.
// ActiveWrite is the ring currently accepting pushes, ActiveRead the ring
// being drained. Outside of a capacity migration both point at the same
// ring. During one, producers move to the replacement ring while consumers
// finish emptying the sealed one.
type Queue[T any] struct {
	ActiveWrite atomic.Pointer[QueueInst[T]]
	ActiveRead  atomic.Pointer[QueueInst[T]]
	handoff     atomic.Value // Buffered channel, signals the consumer that empties the sealed ring to flip the read view
	floor       int          // Smallest capacity the autoscaler may shrink to
	ceiling     int          // Largest capacity the autoscaler may grow to
}
