package logctx

import (
	"tailpost/internal/global"
	"time"
)

// Buffers one event. Errors always pass, everything else obeys the level.
func (logger *Logger) log(eventLevel int, eventSeverity string, tags []string, message string) {
	logger.mu.Lock()
	currentLevel := logger.PrintLevel
	logger.mu.Unlock()

	if eventLevel > currentLevel && eventSeverity != global.ErrorLog {
		return
	}

	event := Event{
		Timestamp: time.Now(),
		Tags:      tags,
		Severity:  eventSeverity,
		Message:   message,
	}

	logger.mu.Lock()
	logger.buffer = append(logger.buffer, event)
	logger.cond.Signal() // Watcher may be asleep waiting for events
	logger.mu.Unlock()
}
