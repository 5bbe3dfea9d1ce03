package file

import (
	"io"
	"sync/atomic"
	"tailpost/internal/classify"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// Module for reading lines appended to a local file.
type InModule struct {
	// Location of this module instance in the wider program for logging and metric contexts
	Namespace []string

	// Source of log lines
	source io.ReadSeekCloser

	// Path being read
	filePath string

	// Line format this source is declared to produce
	format classify.Variant

	// Inotify instance watching filePath, established at creation so writes
	// landing before the read loop starts are never missed
	notifyFd        int
	watchDescriptor int

	// Per-channel destinations for classified lines
	outStdout *mpmc.Queue[record.Line]
	outStderr *mpmc.Queue[record.Line]

	// Performance counters
	metrics MetricStorage
}

// Metrics storage for a file input module.
type MetricStorage struct {
	// Number of complete non-blank lines read from the file
	LinesRead atomic.Uint64

	// Number of lines classified and handed to a stream queue
	Delivered atomic.Uint64

	// Number of lines dropped by classification
	Dropped atomic.Uint64
}
