package logctx

import (
	"sync"
	"time"
)

// One buffered log event
type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

type Logger struct {
	ID         string
	CreatedAt  time.Time
	buffer     []Event    // pending events, oldest first
	mu         sync.Mutex // protects buffer and PrintLevel
	cond       *sync.Cond // signals the watcher when events arrive
	Done       <-chan struct{}
	PrintLevel int             // Verbosity ceiling for recorded events
	wg         *sync.WaitGroup // Holds process exit until watchers finish draining
}

// Repeat tracking for watcher noise suppression
type dedupState struct {
	lastMessage string
	repeats     int
	lastNotice  time.Time
}
