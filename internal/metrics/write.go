package metrics

import (
	"strings"
	"time"
)

// Opens the bucket for one collection interval. Timestamps round down to
// the interval so every collector in the same pass lands in one slice.
func (registry *Registry) NewTimeSlice(now time.Time, interval time.Duration) (timeSlice time.Time) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	timeSlice = now
	if interval > 0 {
		timeSlice = now.Truncate(interval)
	}

	if registry.slices[timeSlice] == nil {
		registry.slices[timeSlice] = make(map[seriesKey]Metric)
	}
	return
}

// Stores a batch of metrics into an already opened time slice. Batches
// aimed at a slice that was never opened are dropped.
func (registry *Registry) Add(timeSlice time.Time, batch []Metric) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	bucket := registry.slices[timeSlice]
	if bucket == nil {
		return
	}

	for _, metric := range batch {
		key := seriesKey{
			namespace: strings.Join(metric.Namespace, "/"),
			name:      metric.Name,
		}
		bucket[key] = metric
	}
}
