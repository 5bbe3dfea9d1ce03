package metrics

import (
	"sync"
	"time"
)

// Samples live in per-interval buckets, keyed inside each bucket by
// series identity so repeat writes in one interval overwrite.
type Registry struct {
	mu     sync.RWMutex
	slices map[time.Time]map[seriesKey]Metric
}

// Identity of one metric series inside a time slice
type seriesKey struct {
	namespace string // path form, segments joined by "/"
	name      string
}

type MetricType string

const (
	Counter MetricType = "counter" // accumulates, producers reset on read
	Gauge   MetricType = "gauge"   // point-in-time level
	Summary MetricType = "summary" // distribution rollup
)

// One sample of one series
type Metric struct {
	Name        string // snake_case, queue_depth, lines_read
	Description string
	Namespace   []string // producer identity, "Relay/Ingest/Watcher/0"
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time // when the sample was harvested
}

// Measurement payload carried by a Metric
type MetricValue struct {
	Raw      interface{}   // uint64 for counts, float64 for rollups
	Unit     string        // unit of Raw: "ns", "bytes", "count"
	Interval time.Duration // length of the measurement window
}

// Wire form served by the metric endpoint
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp"`
}

type JMetricValue struct {
	Raw      string `json:"raw"`
	Unit     string `json:"unit"`
	Interval string `json:"interval"`
}
