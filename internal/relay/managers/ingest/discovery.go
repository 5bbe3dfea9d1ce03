package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"tailpost/internal/classify"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"time"
)

// Performs the first discovery pass over every configured watch target.
// Literal paths are created empty when missing, glob patterns attach every
// current match, the stdin marker attaches the given source. Targets that
// cannot start yet are left for the periodic rescan. Record delivery must
// not begin until this returns.
func (manager *InstanceManager) InitialScan(specs []classify.PathSpec, stdinSource io.ReadCloser) (err error) {
	manager.watchSpecs = specs

	for _, spec := range specs {
		if spec.IsStdin {
			err = manager.AddStdinInstance(stdinSource)
			if err != nil {
				return
			}
			continue
		}

		if !spec.IsGlob() {
			addErr := manager.AddFileInstance(spec.Path, spec.Format)
			if addErr != nil {
				logctx.LogEvent(manager.ctx, global.VerbosityStandard, global.WarnLog,
					"watch target '%s' is not readable yet: %v\n", spec.Path, addErr)
			}
			continue
		}

		var matches []string
		matches, err = filepath.Glob(spec.Path)
		if err != nil {
			err = fmt.Errorf("invalid watch pattern '%s': %v", spec.Path, err)
			return
		}
		for _, match := range matches {
			addErr := manager.AddFileInstance(match, spec.Format)
			if addErr != nil {
				logctx.LogEvent(manager.ctx, global.VerbosityStandard, global.WarnLog,
					"failed to start tailing '%s': %v\n", match, addErr)
			}
		}
	}
	return
}

// Periodically rechecks every watch target so files appearing after startup
// join the watch set. Runs until cancellation.
func (manager *InstanceManager) WatchForNew(ctx context.Context, interval time.Duration) {
	ctx = logctx.AppendCtxTag(ctx, global.NSWatcher)
	defer func() { ctx = logctx.RemoveLastCtxTag(ctx) }()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			manager.scanOnce(ctx)
		}
	}
}

// Immediately rechecks every watch target instead of waiting for the next
// periodic tick. Used for reload signals.
func (manager *InstanceManager) Rescan() {
	manager.Mu.Lock()
	ctx := manager.ctx
	manager.Mu.Unlock()

	manager.scanOnce(ctx)
}

// One rescan pass. Already running sources are left alone.
func (manager *InstanceManager) scanOnce(ctx context.Context) {
	manager.Mu.Lock()
	defer manager.Mu.Unlock()

	for _, spec := range manager.watchSpecs {
		if spec.IsStdin {
			continue
		}

		if !spec.IsGlob() {
			if _, running := manager.FileSources[spec.Path]; running {
				continue
			}
			err := manager.addFileInstanceLocked(spec.Path, spec.Format)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityData, global.WarnLog,
					"watch target '%s' still not readable: %v\n", spec.Path, err)
			}
			continue
		}

		// Pattern validity was checked during the initial scan
		matches, _ := filepath.Glob(spec.Path)
		for _, match := range matches {
			if _, running := manager.FileSources[match]; running {
				continue
			}
			err := manager.addFileInstanceLocked(match, spec.Format)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
					"failed to start tailing discovered file '%s': %v\n", match, err)
			}
		}
	}
}
