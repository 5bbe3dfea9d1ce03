// Time-sliced in-memory store for pipeline metrics
package metrics

import "time"

// Creates an empty registry ready for recording
func New() (new *Registry) {
	new = &Registry{
		slices: make(map[time.Time]map[seriesKey]Metric),
	}
	return
}
