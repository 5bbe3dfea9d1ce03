package deliver

import (
	"tailpost/internal/externalio/beats"
	"tailpost/internal/externalio/store"
	"tailpost/internal/queue/mpmc"
	"tailpost/pkg/record"
	"time"
)

// The single delivery worker. Records are submitted strictly one at a time
// in inbox order, a record is never skipped and never overtaken.
type Instance struct {
	Namespace []string
	inbox     *mpmc.Queue[record.LogRecord]
	sink      *store.Client
	mirror    *beats.OutModule // optional, nil when disabled

	// Destination table for inserts
	table string

	// Total attempts per record before the pipeline gives up
	retryLimit int

	// Pause between consecutive attempts
	retryInterval time.Duration

	// Exhausted retries stop the whole pipeline through this channel
	fatal chan<- error

	Metrics *MetricStorage
}
