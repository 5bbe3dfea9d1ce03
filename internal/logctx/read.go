package logctx

import (
	"sort"
	"strings"
)

// Snapshot of all buffered events, formatted and ordered oldest to newest.
// Does not drain the buffer, the watcher keeps ownership of that.
func (logger *Logger) GetFormattedLogLines() (formatted []string) {
	// Copy under lock, sort and format outside it
	logger.mu.Lock()
	events := make([]Event, len(logger.buffer))
	copy(events, logger.buffer)
	logger.mu.Unlock()

	sort.SliceStable(events, func(i, j int) bool {
		left := events[i].Timestamp
		right := events[j].Timestamp

		// Unstamped events drift to the end
		if left.IsZero() {
			return false
		}
		if right.IsZero() {
			return true
		}
		return left.Before(right)
	})

	formatted = make([]string, 0, len(events))
	for _, event := range events {
		line := event.Format()
		if event.Message != "" && !strings.HasSuffix(line, "\n") {
			line += "\n"
		}
		formatted = append(formatted, line)
	}
	return
}
