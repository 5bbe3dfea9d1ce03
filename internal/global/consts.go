package global

import "time"

const (
	// Verbosity ladder, each level includes everything below it
	VerbosityNone int = iota
	VerbosityStandard
	VerbosityProgress
	VerbosityData
	VerbosityFullData
	VerbosityDebug

	// Severity labels shown in the diagnostic stream
	ErrorLog string = "Error"
	WarnLog  string = "Warn"
	InfoLog  string = "Info"
)

const (
	ProgBaseName string = "tailpost"
	ProgVersion  string = "v0.3.1"

	// Keys into the context value chain
	LoggerKey  CtxKey = "logger"  // Shared event buffer behind LogEvent
	LogTagsKey CtxKey = "logtags" // Component lineage tags, broad to specific

	DefaultBinaryPath   string = "/usr/local/bin/tailpost"
	DefaultConfigDir    string = "/etc/tailpost"
	DefaultConfigPath   string = "/etc/tailpost/config.json"
	DefaultTokenEnvFile string = "/etc/tailpost/token.env"
	DefaultAAProfName   string = "usr.local.bin.tailpost"

	// Marker accepted in place of a file path to read from standard input
	StdinPath string = "-"

	// Environment variable names honored at startup
	EnvToken    string = "TAILPOST_TOKEN"
	EnvStoreURL string = "TAILPOST_STORE_URL"

	// Delivery defaults
	DefaultStoreTable    string        = "logs"
	DefaultRetryLimit    int           = 10
	DefaultRetryInterval time.Duration = 1000 * time.Millisecond
	DefaultStoreTimeout  time.Duration = 15 * time.Second
	DefaultBeatsAddr     string        = "localhost:5044"

	// Ring capacity floor and ceiling for queue autoscaling
	DefaultMinQueueSize int = 512
	DefaultMaxQueueSize int = 4096

	// How often late-appearing watch paths are rechecked
	DefaultDiscoveryInterval time.Duration = 2 * time.Second

	// Upper bound on a graceful teardown
	RelayShutdownTimeout time.Duration = 10 * time.Second

	// Aggregation operation names accepted by the metric query API
	MetricSum   string = "sum"
	MetricMin   string = "min"
	MetricMax   string = "max"
	MetricAvg   string = "avg"
	MetricTMean string = "tmean"

	// Local metric query server
	HTTPListenPortRelay int           = 18080       // high port, clear of registered services
	HTTPListenAddr      string        = "localhost" // loopback only, metrics never leave the host
	HTTPReadTimeout     time.Duration = 30 * time.Second
	HTTPWriteTimeout    time.Duration = 10 * time.Second
	HTTPIdleTimeout     time.Duration = 180 * time.Second

	// Query server URL prefixes
	DataPath        string = "/data/"
	DiscoveryPath   string = "/discover/"
	AggregationPath string = "/aggregate/"

	// Namespace path segments
	NSMetric    string = "Metrics"
	NSMetricSrv string = "Server"
	NSTest      string = "Test"
	NSRelay     string = "Relay"
	NSQueue     string = "Queue"
	NSWorker    string = "Worker"
	NSWatcher   string = "Watcher"
	NSmIngest   string = "Ingest"
	NSmMux      string = "Mux"
	NSmDelivery string = "Delivery"
	NSoFile     string = "File"
	NSoStdin    string = "Stdin"
	NSsStdout   string = "Stdout"
	NSsStderr   string = "Stderr"
)
