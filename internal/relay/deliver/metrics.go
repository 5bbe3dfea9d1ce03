package deliver

import (
	"sync/atomic"
	"tailpost/internal/metrics"
	"time"
)

type MetricStorage struct {
	Delivered      atomic.Uint64
	SumRecordBytes atomic.Uint64
	FailedAttempts atomic.Uint64
	Exhausted      atomic.Uint64
	Mirrored       atomic.Uint64
}

func (instance *Instance) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	// Counters drain on read
	delivered := instance.Metrics.Delivered.Swap(0)
	sumRecB := instance.Metrics.SumRecordBytes.Swap(0)
	failed := instance.Metrics.FailedAttempts.Swap(0)
	exhausted := instance.Metrics.Exhausted.Swap(0)
	mirrored := instance.Metrics.Mirrored.Swap(0)

	// One timestamp for the whole batch
	recordTime := time.Now()

	collection = []metrics.Metric{
		{
			Name:        "delivered_records",
			Description: "Total records accepted by the store in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      delivered,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "sum_record_size",
			Description: "Total content size of records accepted by the store in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      sumRecB,
				Unit:     "bytes",
				Interval: interval,
			},
			Type:      metrics.Gauge,
			Timestamp: recordTime,
		},
		{
			Name:        "failed_attempts",
			Description: "Total store submissions that failed in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      failed,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "exhausted_records",
			Description: "Total records that spent every delivery attempt in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      exhausted,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "mirrored_records",
			Description: "Total records fanned out to the beats mirror in the interval",
			Namespace:   instance.Namespace,
			Value: metrics.MetricValue{
				Raw:      mirrored,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}

	return
}
