package server

import (
	"context"
	"tailpost/internal/metrics"
	"time"
)

// Routes http.Server error output into the context logger
type logBridge struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// Query hooks into the metric registry, injected by the daemon
type DataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metrics.Metric
type Discoverer func(name, description string, namespacePrefix []string, unit string, metricType metrics.MetricType) []metrics.Metric
type AggSearcher func(aggType string, name string, namespacePrefix []string, start, end time.Time) (metrics.Metric, error)
