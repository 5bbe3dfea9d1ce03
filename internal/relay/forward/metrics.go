package forward

import (
	"sync/atomic"
	"tailpost/internal/metrics"
	"time"
)

type MetricStorage struct {
	Forwarded    atomic.Uint64
	SumLineBytes atomic.Uint64
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Counters drain on read
	forwarded := instance.Metrics.Forwarded.Swap(0)
	sumLineB := instance.Metrics.SumLineBytes.Swap(0)

	// One timestamp for the whole batch
	recordTime := time.Now()

	var avgLineSize uint64
	if forwarded > 0 {
		avgLineSize = sumLineB / forwarded
	}

	collection = []metrics.Metric{
		{
			Name:        "forwarded_lines",
			Description: "Total lines converted to records in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      forwarded,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Gauge,
			Timestamp: recordTime,
		},
		{
			Name:        "sum_line_size",
			Description: "Total content size of all lines forwarded in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      sumLineB,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Gauge,
			Timestamp: recordTime,
		},
		{
			Name:        "average_line_size",
			Description: "Average content size across lines forwarded in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      avgLineSize,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Summary,
			Timestamp: recordTime,
		},
	}

	return
}
