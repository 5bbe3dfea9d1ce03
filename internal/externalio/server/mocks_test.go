package server

import (
	"tailpost/internal/metrics"
	"time"
)

// Records the arguments a handler passed into the registry hooks
type queryCall struct {
	name string
	ns   []string
}

func mockDiscoverer(results []metrics.Metric) Discoverer {
	return func(name, description string, ns []string, unit string, metricType metrics.MetricType) []metrics.Metric {
		return results
	}
}

func mockDataSearcher(results []metrics.Metric, calls *[]queryCall) DataSearcher {
	return func(name string, ns []string, start, end time.Time) []metrics.Metric {
		if calls != nil {
			*calls = append(*calls, queryCall{name: name, ns: ns})
		}
		return results
	}
}

func mockAggSearcher(result metrics.Metric, err error) AggSearcher {
	return func(aggType, name string, ns []string, start, end time.Time) (metrics.Metric, error) {
		return result, err
	}
}
