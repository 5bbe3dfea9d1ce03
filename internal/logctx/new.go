package logctx

import (
	"context"
)

// Builds a logger and embeds it in the returned context. The level sets
// the verbosity ceiling, global.Verbosity documents the ladder.
func New(baseCtx context.Context, id string, logLevel int, done <-chan struct{}) (ctxLogger context.Context) {
	logger := NewLogger(id, logLevel, done)
	ctxLogger = WithLogger(baseCtx, logger)
	return
}
