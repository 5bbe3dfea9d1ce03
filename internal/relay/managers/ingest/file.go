package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"tailpost/internal/classify"
	"tailpost/internal/externalio/file"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
)

// Starts tailing one file. The reader is armed (positioned at end of
// file, watch registered) before this returns.
func (manager *InstanceManager) AddFileInstance(filePath string, format classify.Variant) (err error) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	err = manager.addFileInstanceLocked(filePath, format)
	return
}

func (manager *InstanceManager) addFileInstanceLocked(filePath string, format classify.Variant) (err error) {
	_, ok := manager.FileSources[filePath]
	if ok {
		err = fmt.Errorf("cannot start a new file instance with one running for path '%s'", filePath)
		return
	}

	filename := filepath.Base(filePath)
	manager.ctx = logctx.AppendCtxTag(manager.ctx, filename)
	defer func() { manager.ctx = logctx.RemoveLastCtxTag(manager.ctx) }()

	// NewInput arms the reader, a failure here means no goroutine started
	worker, err := file.NewInput(logctx.GetTagList(manager.ctx), filePath, format, manager.outStdout, manager.outStderr)
	if err != nil {
		return
	}
	ingestInstance := &FileWorker{
		Worker: worker,
	}

	// Detached from the manager context, removal owns cancellation
	ingestCtx, cancelInstance := context.WithCancel(context.Background())
	ingestCtx = context.WithValue(ingestCtx, global.LoggerKey, logctx.GetLogger(manager.ctx))
	manager.FileSources[filePath] = ingestInstance
	ingestInstance.cancel = cancelInstance

	ingestInstance.wg.Add(1)
	go func() {
		defer ingestInstance.wg.Done()
		ingestCtx := logctx.OverwriteCtxTag(ingestCtx, ingestInstance.Worker.Namespace)
		ingestInstance.Worker.Run(ingestCtx)
	}()

	logctx.LogEvent(manager.ctx, global.VerbosityStandard, global.InfoLog,
		"now tailing '%s' (%s)\n", filePath, format)
	return
}

// Stops the reader for one path and detaches its watch
func (manager *InstanceManager) RemoveFileInstance(filePath string) (err error) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	fileSource, ok := manager.FileSources[filePath]
	if !ok {
		err = fmt.Errorf("no file source for '%s'", filePath)
		return
	}

	if fileSource.cancel != nil {
		fileSource.cancel()
	}
	fileSource.wg.Wait()
	fileSource.Worker.Shutdown()
	delete(manager.FileSources, filePath)
	return
}
