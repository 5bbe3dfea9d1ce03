package ingest

import (
	"context"
	"sync"
	"tailpost/internal/classify"
	"tailpost/internal/externalio/file"
	"tailpost/internal/externalio/stdin"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

type InstanceManager struct {
	Mu          sync.Mutex
	FileSources map[string]*FileWorker // File sources keyed by resolved path
	StdinSource *StdinWorker

	// Every configured watch target, rescanned by discovery
	watchSpecs []classify.PathSpec

	// Shared per-channel stream queues owned by the mux manager
	outStdout *mpmc.Queue[record.Line]
	outStderr *mpmc.Queue[record.Line]

	ctx context.Context
}

type FileWorker struct {
	Worker *file.InModule
	wg     sync.WaitGroup     // joined on removal
	cancel context.CancelFunc // ends the reader's Run loop
}

type StdinWorker struct {
	Worker *stdin.InModule
	wg     sync.WaitGroup     // joined on removal
	cancel context.CancelFunc // ends the reader's Run loop
}
