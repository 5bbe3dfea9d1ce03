// Buffered logging carried through contexts, every pipeline component tags its own events
package logctx

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"tailpost/internal/global"
	"time"
)

// Builds a standalone logger. Events buffer until a watcher starts draining.
func NewLogger(id string, logLevel int, done <-chan struct{}) (logger *Logger) {
	logger = &Logger{
		ID:         id,
		CreatedAt:  time.Now(),
		PrintLevel: logLevel,
		Done:       done,
		wg:         &sync.WaitGroup{},
	}
	logger.cond = sync.NewCond(&logger.mu)
	return
}

// Attaches the logger to a context for LogEvent callers downstream
func WithLogger(ctx context.Context, logger *Logger) (ctxLogger context.Context) {
	ctxLogger = context.WithValue(ctx, global.LoggerKey, logger)
	return
}

// Adjusts the verbosity ceiling of the context's logger, if any
func SetLogLevel(ctx context.Context, newLevel int) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}

	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.PrintLevel = newLevel
}

// Extracts the logger from context, nil when none is attached
func GetLogger(ctx context.Context) (logger *Logger) {
	logger, _ = ctx.Value(global.LoggerKey).(*Logger)
	return
}

// Records one event under the tags carried by the context. Contexts
// without a logger drop the event silently.
func LogEvent(ctx context.Context, eventLevel int, severity string, message string, vars ...any) {
	tags := GetTagList(ctx)

	logger := GetLogger(ctx)
	if logger == nil {
		return
	}

	// Plain messages skip Sprintf so stray percent signs survive as-is
	text := message
	if len(vars) > 0 && strings.Contains(message, "%") {
		text = fmt.Sprintf(message, vars...)
	}

	logger.log(eventLevel, severity, tags, text)
}
