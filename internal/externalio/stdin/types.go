package stdin

import (
	"io"
	"sync/atomic"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// Module for reading lines from the process standard input. Standard input
// carries plain text only, every line lands on the stdout channel.
type InModule struct {
	// Location of this module instance in the wider program for logging and metric contexts
	Namespace []string

	// Source of log lines
	source io.ReadCloser

	// Destination for classified lines
	outbox *mpmc.Queue[record.Line]

	// Performance counters
	metrics MetricStorage
}

// Metrics storage for the standard input module.
type MetricStorage struct {
	// Number of complete non-blank lines read
	LinesRead atomic.Uint64

	// Number of lines handed to the stream queue
	Delivered atomic.Uint64
}
