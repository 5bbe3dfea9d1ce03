package mux

import (
	"context"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/queue/mpmc"
	"tailpost/internal/relay/forward"
	"tailpost/pkg/record"
)

// Starts the stdout and stderr forwarders
func (manager *InstanceManager) StartForwarders() {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	if manager.StdoutLane == nil {
		manager.StdoutLane = manager.startLaneLocked(global.NSsStdout, manager.StdoutQueue)
	}
	if manager.StderrLane == nil {
		manager.StderrLane = manager.startLaneLocked(global.NSsStderr, manager.StderrQueue)
	}
}

func (manager *InstanceManager) startLaneLocked(streamName string, inQueue *mpmc.Queue[record.Line]) (lane *Lane) {
	// Stream name joins the tag lineage for this lane's logs
	manager.ctx = logctx.AppendCtxTag(manager.ctx, streamName)
	defer func() { manager.ctx = logctx.RemoveLastCtxTag(manager.ctx) }()

	lane = &Lane{
		Worker: forward.New(logctx.GetTagList(manager.ctx), inQueue, manager.outbox, manager.who),
	}

	// Detached from the manager context, StopForwarders owns cancellation
	workerCtx, cancelInstance := context.WithCancel(context.Background())
	lane.cancel = cancelInstance
	workerCtx = context.WithValue(workerCtx, global.LoggerKey, logctx.GetLogger(manager.ctx))

	lane.wg.Add(1)
	go func() {
		defer lane.wg.Done()
		workerCtx := logctx.OverwriteCtxTag(workerCtx, lane.Worker.Namespace)
		lane.Worker.Run(workerCtx)
	}()
	return
}

// Stops both forwarders and waits for them to settle
func (manager *InstanceManager) StopForwarders() {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	for _, lane := range []*Lane{manager.StdoutLane, manager.StderrLane} {
		if lane == nil {
			continue
		}
		if lane.cancel != nil {
			lane.cancel()
		}
		lane.wg.Wait()
	}
	manager.StdoutLane = nil
	manager.StderrLane = nil
}
