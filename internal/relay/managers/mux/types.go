package mux

import (
	"context"
	"sync"
	"tailpost/internal/identity"
	"tailpost/internal/queue/mpmc"
	"tailpost/internal/relay/forward"
	"tailpost/pkg/record"
)

type InstanceManager struct {
	Mu sync.Mutex // For starting/stopping forwarder operations

	// Shared stream inboxes fed by every reader
	StdoutQueue *mpmc.Queue[record.Line]
	StderrQueue *mpmc.Queue[record.Line]

	// Exactly one forwarder per stream so lines from one file never
	// overtake each other between the stream queue and the delivery inbox
	StdoutLane *Lane
	StderrLane *Lane

	outbox *mpmc.Queue[record.LogRecord] // Delivery inbox both lanes feed
	who    identity.Identity             // Identity stamped onto every record
	ctx    context.Context
}

// A running forwarder bound to one stream queue
type Lane struct {
	Worker *forward.Instance  // Individual forwarder worker
	wg     sync.WaitGroup     // joined by StopForwarders
	cancel context.CancelFunc // ends the worker's Run loop
}
