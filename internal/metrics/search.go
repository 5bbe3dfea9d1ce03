package metrics

import (
	"sort"
	"strings"
	"time"
)

// Prefix match against the query segments. Empty query matches all.
func matchesNamespace(metricNS, queryNS []string) (matches bool) {
	if len(queryNS) == 0 {
		matches = true
		return
	}
	if len(metricNS) < len(queryNS) {
		return
	}
	for position := range queryNS {
		if metricNS[position] != queryNS[position] {
			return
		}
	}
	matches = true
	return
}

// Returns every stored metric matching the name and namespace prefix,
// oldest slice first. Empty name matches all names, empty prefix all
// namespaces, zero start/end disable the respective bound.
func (registry *Registry) Search(name string, namespacePrefix []string, start, end time.Time) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	for _, timeSlice := range registry.sliceTimesLocked(start, end) {
		for key, metric := range registry.slices[timeSlice] {
			if name != "" && key.name != name {
				continue
			}
			if !matchesNamespace(strings.Split(key.namespace, "/"), namespacePrefix) {
				continue
			}
			results = append(results, metric)
		}
	}

	return
}

// Timestamps of all slices inside the window, oldest first. Caller must
// hold at least the read lock.
func (registry *Registry) sliceTimesLocked(start, end time.Time) (times []time.Time) {
	for timeSlice := range registry.slices {
		if !start.IsZero() && timeSlice.Before(start) {
			continue
		}
		if !end.IsZero() && timeSlice.After(end) {
			continue
		}
		times = append(times, timeSlice)
	}

	sort.Slice(times, func(i, j int) bool {
		return times[i].Before(times[j])
	})
	return
}

// Lists the distinct metric series matching the filters, independent of
// time. Name and description filter by substring. All filters empty
// returns everything.
func (registry *Registry) Discover(name, description string, namespacePrefix []string, unit string, metricType MetricType) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	type identity struct {
		seriesKey
		metricType MetricType
		unit       string
	}
	seen := make(map[identity]Metric)

	for _, bucket := range registry.slices {
		for key, metric := range bucket {
			if name != "" && !strings.Contains(metric.Name, name) {
				continue
			}
			if description != "" && !strings.Contains(metric.Description, description) {
				continue
			}
			if !matchesNamespace(strings.Split(key.namespace, "/"), namespacePrefix) {
				continue
			}
			if unit != "" && metric.Value.Unit != unit {
				continue
			}
			if metricType != "" && metric.Type != metricType {
				continue
			}

			id := identity{key, metric.Type, metric.Value.Unit}
			if _, exists := seen[id]; exists {
				continue
			}

			// Series identity only, no sample data
			seen[id] = Metric{
				Name:        metric.Name,
				Description: metric.Description,
				Namespace:   metric.Namespace,
				Type:        metric.Type,
				Value: MetricValue{
					Unit: metric.Value.Unit,
				},
			}
		}
	}

	results = make([]Metric, 0, len(seen))
	for _, metric := range seen {
		results = append(results, metric)
	}

	// Stable output for the HTTP surface
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return strings.Join(results[i].Namespace, "/") < strings.Join(results[j].Namespace, "/")
	})

	return
}
