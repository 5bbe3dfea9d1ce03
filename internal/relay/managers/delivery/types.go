package delivery

import (
	"context"
	"sync"
	"tailpost/internal/externalio/beats"
	"tailpost/internal/externalio/store"
	"tailpost/internal/queue/mpmc"
	"tailpost/internal/relay/deliver"
	"tailpost/pkg/record"
	"time"
)

type InstanceManager struct {
	Mu sync.Mutex // For starting/stopping worker operations

	// Shared inbox every forwarder feeds. Drained by a single worker so
	// records leave in exactly the order they were queued
	InQueue *mpmc.Queue[record.LogRecord]

	Courier *Instance // The single delivery worker, nil until started

	sink          *store.Client    // Remote store all records are written to
	mirror        *beats.OutModule // Optional beats fan out, nil when disabled
	table         string           // Destination table for inserts
	retryLimit    int              // Total attempts per record
	retryInterval time.Duration    // Pause between consecutive attempts
	fatal         chan<- error     // Exhausted retries surface here
	ctx           context.Context
}

// The running delivery worker
type Instance struct {
	Worker *deliver.Instance  // Individual delivery worker
	wg     sync.WaitGroup     // joined by StopWorker
	cancel context.CancelFunc // ends the worker's Run loop
}
