package delivery

import (
	"context"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/relay/deliver"
)

// Starts the delivery worker. There is never more than one so the inbox
// drains strictly in order.
func (manager *InstanceManager) StartWorker() {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	if manager.Courier != nil {
		return
	}

	newWorker := &Instance{
		Worker: deliver.New(logctx.GetTagList(manager.ctx), manager.InQueue, manager.sink, manager.mirror, manager.table, manager.retryLimit, manager.retryInterval, manager.fatal),
	}

	manager.Courier = newWorker

	// Detached from the manager context, StopWorker owns cancellation
	workerCtx, cancelInstance := context.WithCancel(context.Background())
	newWorker.cancel = cancelInstance
	workerCtx = context.WithValue(workerCtx, global.LoggerKey, logctx.GetLogger(manager.ctx))

	newWorker.wg.Add(1)
	go func() {
		defer newWorker.wg.Done()
		workerCtx := logctx.OverwriteCtxTag(workerCtx, newWorker.Worker.Namespace)
		newWorker.Worker.Run(workerCtx)
	}()
}

// Stops the delivery worker and waits for it to settle
func (manager *InstanceManager) StopWorker() {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	if manager.Courier == nil {
		return
	}
	if manager.Courier.cancel != nil {
		manager.Courier.cancel()
	}
	manager.Courier.wg.Wait()
	manager.Courier = nil
}
