package ingest

import (
	"context"
	"fmt"
	"io"
	"tailpost/internal/externalio/stdin"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
)

// Starts the standard input reader. Standard input is plain text and
// always lands on the stdout stream.
func (manager *InstanceManager) AddStdinInstance(source io.ReadCloser) (err error) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	if manager.StdinSource != nil {
		err = fmt.Errorf("cannot start a new standard input instance with one running")
		return
	}

	worker, err := stdin.NewInput(logctx.GetTagList(manager.ctx), source, manager.outStdout)
	if err != nil {
		return
	}
	if worker == nil {
		err = fmt.Errorf("standard input source is not available")
		return
	}

	// Detached from the manager context, removal owns cancellation
	ingestCtx, cancelInstance := context.WithCancel(context.Background())
	ingestCtx = context.WithValue(ingestCtx, global.LoggerKey, logctx.GetLogger(manager.ctx))

	ingestInstance := &StdinWorker{
		Worker: worker,
		cancel: cancelInstance,
	}
	manager.StdinSource = ingestInstance

	ingestInstance.wg.Add(1)
	go func() {
		defer ingestInstance.wg.Done()
		ingestCtx := logctx.OverwriteCtxTag(ingestCtx, ingestInstance.Worker.Namespace)
		ingestInstance.Worker.Run(ingestCtx)
	}()

	logctx.LogEvent(manager.ctx, global.VerbosityStandard, global.InfoLog,
		"now reading standard input\n")
	return
}

// Stops the standard input reader. Closing the descriptor is what
// unblocks a pending read, cancellation alone cannot reach it.
func (manager *InstanceManager) RemoveStdinInstance() {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	if manager.StdinSource == nil {
		return
	}

	if manager.StdinSource.cancel != nil {
		manager.StdinSource.cancel()
	}
	manager.StdinSource.Worker.Shutdown()
	manager.StdinSource.wg.Wait()
	manager.StdinSource = nil
}
