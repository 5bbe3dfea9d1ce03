package stdin

import (
	"io"
	"tailpost/internal/global"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// Creates a new standard input module. The source is injectable so tests can
// feed a pipe, the daemon passes os.Stdin. Returns nil nil if no source.
func NewInput(namespace []string, source io.ReadCloser, queue *mpmc.Queue[record.Line]) (module *InModule, err error) {
	if source == nil {
		return
	}

	module = &InModule{
		Namespace: append(namespace, global.NSoStdin),
		source:    source,
		outbox:    queue,
		metrics:   MetricStorage{},
	}
	return
}
