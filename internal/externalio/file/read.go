package file

import (
	"bytes"
	"context"
	"io"
	"strings"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/pkg/record"
)

// Reads newly appended lines until cancellation. Only complete lines are
// processed, a trailing partial line stays buffered until its newline
// arrives. Read errors other than end of file terminate this source without
// affecting any other.
func (mod *InModule) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	// Drain inotify events in the background
	fileHasChanged := make(chan bool, 1)
	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		mod.watch(ctx, fileHasChanged)
	}()

	// The watch descriptor is closed after Run returns, the watcher must be
	// gone by then
	defer func() {
		cancel()
		<-watcherDone
	}()

	buf := make([]byte, 65536)
	var lineBuf []byte // holds a partial line across reads, unbounded

	for {
		// Drain everything appended since the last wakeup
		for {
			n, err := mod.source.Read(buf)
			if n == 0 || err == io.EOF {
				break
			} else if err != nil {
				if ctx.Err() == nil {
					logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "unrecoverable read error on '%s': %v\n", mod.filePath, err)
				}
				return
			}

			chunk := buf[:n]
			for {
				nl := bytes.IndexByte(chunk, '\n')
				if nl < 0 {
					lineBuf = append(lineBuf, chunk...)
					break
				}

				line := string(append(lineBuf, chunk[:nl]...))
				lineBuf = lineBuf[:0]
				chunk = chunk[nl+1:]

				mod.processLine(ctx, line)
			}
		}

		// Block until file change or cancellation
		select {
		case <-ctx.Done():
			return
		case <-fileHasChanged:
		}
	}
}

// Classifies one complete line and hands it to the queue matching its
// channel. Blank lines are ignored. Lines the classifier rejects are dropped
// with a warning, never retried.
func (mod *InModule) processLine(ctx context.Context, rawLine string) {
	if strings.TrimSpace(rawLine) == "" {
		return
	}
	mod.metrics.LinesRead.Add(1)

	line, err := mod.format.Classify(rawLine)
	if err != nil {
		mod.metrics.Dropped.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "dropping line from '%s': %v\n", mod.filePath, err)
		return
	}
	line.Source = mod.filePath

	outbox := mod.outStdout
	if line.Channel == record.Stderr {
		outbox = mod.outStderr
	}
	outbox.PushBlocking(ctx, line, line.Size())
	mod.metrics.Delivered.Add(1)
}
