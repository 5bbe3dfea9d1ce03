package forward

import (
	"tailpost/internal/identity"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
)

// One forwarder drains one stream queue. Exactly one instance runs per
// stream so lines leave in the same order they were admitted.
type Instance struct {
	Namespace []string
	inbox     *mpmc.Queue[record.Line]
	outbox    *mpmc.Queue[record.LogRecord]
	who       identity.Identity
	Metrics   *MetricStorage
}
