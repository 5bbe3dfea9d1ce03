package logctx

import (
	"fmt"
	"io"
	"strings"
	"tailpost/internal/global"
	"time"
)

// Repeats inside the window collapse into one notice so a tight loop logging
// the same line cannot drown everything else.
const (
	dedupWindow      = 5 * time.Second
	minRepeats       = 10
	suppressCooldown = 1 * time.Minute
)

// Blocks until every watcher has drained its backlog
func (logger *Logger) Wait() {
	logger.wg.Wait()
}

// Kicks any watcher parked on the condition variable
func (logger *Logger) Wake() {
	logger.mu.Lock()
	defer logger.mu.Unlock()
	logger.cond.Broadcast()
}

// Pops the oldest buffered event, sleeping on the condition variable while
// the buffer is empty. Returns false once Done closed and nothing is left.
// Done with a backlog means keep drainig until the backlog is gone.
func (logger *Logger) nextEvent() (event Event, ok bool) {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	for len(logger.buffer) == 0 {
		select {
		case <-logger.Done:
			return
		default:
			logger.cond.Wait()
		}
	}

	event = logger.buffer[0]
	logger.buffer = logger.buffer[1:]
	ok = true
	return
}

// Reports whether the event is a repeat to swallow, plus a suppression
// notice when one is due. Events older than the window never count as
// repeats.
func (dedup *dedupState) track(event Event, now time.Time) (swallow bool, notice string) {
	repeated := event.Message != "" &&
		event.Message == dedup.lastMessage &&
		now.Sub(event.Timestamp) <= dedupWindow
	if !repeated {
		dedup.lastMessage = event.Message
		dedup.repeats = 1
		return
	}

	dedup.repeats++
	swallow = true

	if dedup.repeats >= minRepeats && now.Sub(dedup.lastNotice) >= suppressCooldown {
		notice = fmt.Sprintf("Suppressed %d repeated messages: %s", dedup.repeats, dedup.lastMessage)
		dedup.lastNotice = now
		dedup.repeats = 0
	}
	return
}

// Starts the goroutine that drains buffered events to the output writer.
// Runs until logger.Done closes and the buffer is empty.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.nextEvent()
			if !ok {
				return
			}

			swallow, notice := dedup.track(event, time.Now())
			if notice != "" {
				fmt.Fprintf(output, "[%s] [%s] [%s] %s\n",
					padTimestamp(event.Timestamp),
					strings.Join(event.Tags, "/"),
					global.InfoLog,
					notice)
			}
			if swallow {
				continue
			}

			fmt.Fprintf(output, "%s", event.Format())
		}
	}()
}
