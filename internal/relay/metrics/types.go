package metrics

import (
	"tailpost/internal/metrics"
	"tailpost/internal/relay/managers/delivery"
	"tailpost/internal/relay/managers/ingest"
	"tailpost/internal/relay/managers/mux"
	"time"
)

type Gatherer struct {
	Interval  time.Duration     // how often a new time slice is cut
	Retention time.Duration     // samples older than this get pruned
	Registry  *metrics.Registry // time-sliced sample store
	Ingest    *ingest.InstanceManager
	Mux       *mux.InstanceManager
	Delivery  *delivery.InstanceManager
}
