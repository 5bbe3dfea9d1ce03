package relay

import (
	"encoding/json"
	"fmt"
	"os"
	"tailpost/internal/global"
	"time"
)

// Reads and decodes the JSON config file
func LoadConfig(path string) (cfg JSONConfig, err error) {
	configFile, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("failed to read config file: %v", err)
		return
	}

	err = json.Unmarshal(configFile, &cfg)
	if err != nil {
		err = fmt.Errorf("invalid config syntax in '%s': %v", path, err)
		return
	}

	return
}

// Maps the file shape onto the runtime daemon configuration
func (cfg JSONConfig) NewRelayConf() (config Config, err error) {
	// Store settings
	config.StoreURL = cfg.Store.URL
	config.StoreTable = cfg.Store.Table
	config.RetryLimit = cfg.Store.RetryLimit
	if cfg.Store.RetryInterval != "" {
		config.RetryInterval, err = time.ParseDuration(cfg.Store.RetryInterval)
		if err != nil {
			err = fmt.Errorf("failed to parse store retry interval time: %v", err)
			return
		}
	}

	// Inputs and discovery
	config.SourcePaths = cfg.Inputs.Paths
	if cfg.Discovery.RescanInterval != "" {
		config.DiscoveryRescanInterval, err = time.ParseDuration(cfg.Discovery.RescanInterval)
		if err != nil {
			err = fmt.Errorf("failed to parse discovery rescan interval time: %v", err)
			return
		}
	}

	// Mirror settings
	config.BeatsEnabled = cfg.Beats.Enabled
	config.BeatsAddress = cfg.Beats.Address

	// Queue autoscaling
	config.AutoscaleEnabled = cfg.AutoScaling.Enabled
	if cfg.AutoScaling.PollInterval != "" {
		config.AutoscaleCheckInterval, err = time.ParseDuration(cfg.AutoScaling.PollInterval)
		if err != nil {
			err = fmt.Errorf("failed to parse autoscale check interval time: %v", err)
			return
		}
	}
	config.MinStreamQueueSize = cfg.AutoScaling.MinStreamQueueSize
	config.MaxStreamQueueSize = cfg.AutoScaling.MaxStreamQueueSize
	config.MinDeliveryQueueSize = cfg.AutoScaling.MinDeliveryQueueSize
	config.MaxDeliveryQueueSize = cfg.AutoScaling.MaxDeliveryQueueSize

	// Metric collection and query surface
	config.MetricQueryServerEnabled = cfg.Metrics.EnableQueryServer
	config.MetricQueryServerPort = cfg.Metrics.QueryServerPort
	if cfg.Metrics.MaxAge != "" {
		config.MetricMaxAge, err = time.ParseDuration(cfg.Metrics.MaxAge)
		if err != nil {
			err = fmt.Errorf("failed to parse metric max age time: %v", err)
			return
		}
	}
	if cfg.Metrics.Interval != "" {
		config.MetricCollectionInterval, err = time.ParseDuration(cfg.Metrics.Interval)
		if err != nil {
			err = fmt.Errorf("failed to parse collection interval time: %v", err)
			return
		}
	}

	return
}

// Fills in anything the config file left at its zero value
func (cfg *Config) setDefaults() {
	// Delivery
	if cfg.StoreTable == "" {
		cfg.StoreTable = global.DefaultStoreTable
	}
	if cfg.RetryLimit == 0 {
		cfg.RetryLimit = global.DefaultRetryLimit
	}
	if cfg.RetryInterval == 0 {
		cfg.RetryInterval = global.DefaultRetryInterval
	}
	if cfg.BeatsEnabled && cfg.BeatsAddress == "" {
		cfg.BeatsAddress = global.DefaultBeatsAddr
	}

	// Discovery
	if cfg.DiscoveryRescanInterval == 0 {
		cfg.DiscoveryRescanInterval = global.DefaultDiscoveryInterval
	}

	// Autoscaler cadence
	if cfg.AutoscaleCheckInterval == 0 {
		cfg.AutoscaleCheckInterval = 5 * time.Second
	}

	// Ring floors and ceilings
	if cfg.MaxStreamQueueSize == 0 {
		cfg.MaxStreamQueueSize = global.DefaultMaxQueueSize
	}
	if cfg.MinStreamQueueSize == 0 {
		cfg.MinStreamQueueSize = global.DefaultMinQueueSize
	}
	if cfg.MaxDeliveryQueueSize == 0 {
		cfg.MaxDeliveryQueueSize = global.DefaultMaxQueueSize
	}
	if cfg.MinDeliveryQueueSize == 0 {
		cfg.MinDeliveryQueueSize = global.DefaultMinQueueSize
	}

	// Metric retention and query port
	if cfg.MetricMaxAge == 0 {
		cfg.MetricMaxAge = 1 * time.Hour
	}
	if cfg.MetricQueryServerPort == 0 {
		cfg.MetricQueryServerPort = global.HTTPListenPortRelay
	}
	if cfg.MetricCollectionInterval == 0 {
		cfg.MetricCollectionInterval = 15 * time.Second
	}
}
