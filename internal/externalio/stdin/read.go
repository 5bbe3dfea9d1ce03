package stdin

import (
	"bufio"
	"context"
	"io"
	"strings"
	"tailpost/internal/classify"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
)

// Reads lines until the stream closes or cancellation. A trailing partial
// line at end of stream still counts as a line, nothing more is coming to
// complete it.
func (mod *InModule) Run(ctx context.Context) {
	reader := bufio.NewReader(mod.source)

	for {
		if ctx.Err() != nil {
			return
		}

		rawLine, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			if ctx.Err() == nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog, "error reading standard input: %v\n", err)
			}
			return
		}

		mod.processLine(ctx, strings.TrimSuffix(rawLine, "\n"))

		if err == io.EOF {
			logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "standard input closed\n")
			return
		}
	}
}

// Hands one complete line to the stdout stream queue. Blank lines are ignored.
func (mod *InModule) processLine(ctx context.Context, rawLine string) {
	if strings.TrimSpace(rawLine) == "" {
		return
	}
	mod.metrics.LinesRead.Add(1)

	line, err := classify.Plain.Classify(rawLine)
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "dropping line from standard input: %v\n", err)
		return
	}
	line.Source = global.StdinPath

	mod.outbox.PushBlocking(ctx, line, line.Size())
	mod.metrics.Delivered.Add(1)
}
