// Manages source reader worker instances
package ingest

import (
	"context"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// Builds the manager over the two stream queues readers will feed
func NewInstanceManager(ctx context.Context, stdout *mpmc.Queue[record.Line], stderr *mpmc.Queue[record.Line]) (new *InstanceManager) {
	// Wiring bug, daemon startup always passes both queues
	if stdout == nil || stderr == nil {
		panic("FATAL: Ingest manager received empty stream queue variable")
	}

	// Manager logs carry the ingest namespace tag
	ctx = logctx.AppendCtxTag(ctx, global.NSmIngest)
	defer func() { ctx = logctx.RemoveLastCtxTag(ctx) }()

	new = &InstanceManager{
		FileSources: make(map[string]*FileWorker),
		outStdout:   stdout,
		outStderr:   stderr,
		ctx:         ctx,
	}
	return
}
