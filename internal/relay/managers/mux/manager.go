// Manages the per stream forwarders that multiplex lines into the delivery inbox
package mux

import (
	"context"
	"tailpost/internal/global"
	"tailpost/internal/identity"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// Builds the manager along with both of its stream inboxes
func NewInstanceManager(ctx context.Context, inboxSize int, outbox *mpmc.Queue[record.LogRecord], who identity.Identity, minQsize, maxQsize int) (new *InstanceManager, err error) {
	// Manager logs carry the mux namespace tag
	ctx = logctx.AppendCtxTag(ctx, global.NSmMux)
	defer func() { ctx = logctx.RemoveLastCtxTag(ctx) }()

	stdoutCtx := logctx.AppendCtxTag(ctx, global.NSsStdout)
	stdoutQueue, err := mpmc.New[record.Line](logctx.GetTagList(stdoutCtx), uint64(inboxSize), minQsize, maxQsize)
	if err != nil {
		return
	}

	stderrCtx := logctx.AppendCtxTag(ctx, global.NSsStderr)
	stderrQueue, err := mpmc.New[record.Line](logctx.GetTagList(stderrCtx), uint64(inboxSize), minQsize, maxQsize)
	if err != nil {
		return
	}

	new = &InstanceManager{
		StdoutQueue: stdoutQueue,
		StderrQueue: stderrQueue,
		outbox:      outbox,
		who:         who,
		ctx:         ctx,
	}
	return
}
