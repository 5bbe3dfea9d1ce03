package file

import (
	"tailpost/internal/metrics"
	"time"
)

func (mod *InModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Counters drain on read
	lines := mod.metrics.LinesRead.Swap(0)
	delivered := mod.metrics.Delivered.Swap(0)
	dropped := mod.metrics.Dropped.Swap(0)

	// One timestamp for the whole batch
	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "lines_read",
			Description: "Total non-blank lines read from file in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      lines,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "delivered",
			Description: "Total classified lines handed to a stream queue in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      delivered,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "dropped",
			Description: "Total lines rejected by classification in the interval",
			Namespace:   mod.Namespace,
			Value: metrics.MetricValue{
				Raw:      dropped,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
