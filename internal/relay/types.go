package relay

import (
	"context"
	"net/http"
	"sync"
	metricGlb "tailpost/internal/metrics"
	"tailpost/internal/relay/metrics"
	"tailpost/internal/relay/shared"
	"time"
)

type JSONConfig struct {
	Store struct {
		URL           string `json:"url"`
		Table         string `json:"table,omitempty"`
		RetryLimit    int    `json:"retryLimit,omitempty"`
		RetryInterval string `json:"retryInterval,omitempty"`
	} `json:"store"`
	Inputs struct {
		Paths []string `json:"paths,omitempty"`
	} `json:"inputs"`
	Discovery struct {
		RescanInterval string `json:"rescanInterval,omitempty"`
	} `json:"discovery"`
	Beats struct {
		Enabled bool   `json:"enabled"`
		Address string `json:"address,omitempty"`
	} `json:"beats"`
	Metrics struct {
		Interval          string `json:"collectionInterval,omitempty"`
		MaxAge            string `json:"maximumRetention,omitempty"`
		EnableQueryServer bool   `json:"enableHTTPQueryServer"`
		QueryServerPort   int    `json:"HTTPQueryServerPort,omitempty"`
	} `json:"metrics"`
	AutoScaling struct {
		Enabled              bool   `json:"enabled"`
		PollInterval         string `json:"pollInterval,omitempty"`
		MinStreamQueueSize   int    `json:"minStreamQueueSize,omitempty"`
		MaxStreamQueueSize   int    `json:"maxStreamQueueSize,omitempty"`
		MinDeliveryQueueSize int    `json:"minDeliveryQueueSize,omitempty"`
		MaxDeliveryQueueSize int    `json:"maxDeliveryQueueSize,omitempty"`
	} `json:"autoscaling"`
}

type Config struct {
	// Remote store
	StoreURL      string
	StoreTable    string
	RetryLimit    int
	RetryInterval time.Duration

	// Bearer credential, resolved by the CLI layer (flag/env/prompt), never
	// read from the config file
	Token string

	// Source settings ([format:]path arguments, "-" reads standard input)
	SourcePaths []string

	// Discovery
	DiscoveryRescanInterval time.Duration

	// Optional beats mirror
	BeatsEnabled bool
	BeatsAddress string

	// Queue autoscaling
	AutoscaleEnabled       bool
	AutoscaleCheckInterval time.Duration

	// Ring capacity floors and ceilings
	MinStreamQueueSize int
	MaxStreamQueueSize int

	MinDeliveryQueueSize int
	MaxDeliveryQueueSize int

	// Metric collection and the local query server
	MetricQueryServerEnabled bool
	MetricQueryServerPort    int
	MetricCollectionInterval time.Duration
	MetricMaxAge             time.Duration
}

type Daemon struct {
	cfg    Config
	ctx    context.Context
	cancel context.CancelFunc

	wg sync.WaitGroup

	// Late target discovery loop, joined before readers are torn down
	cancelDiscovery context.CancelFunc
	discoveryDone   chan struct{}

	// Surfaced by the delivery worker when a record exhausts its attempt budget
	fatalCh chan error

	// Stage managers plus the metric query surface
	Mgrs               shared.Managers
	metricsCollector   *metrics.Gatherer
	MetricServer       *http.Server
	MetricDataSearcher func(name string, namespacePrefix []string, start, end time.Time) []metricGlb.Metric
	MetricDiscoverer   func(name, description string, namespacePrefix []string, unit string, metricType metricGlb.MetricType) []metricGlb.Metric
	MetricAggregator   func(aggType string, name string, namespace []string, start, end time.Time) (result metricGlb.Metric, err error)
}
