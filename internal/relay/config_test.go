package relay

import (
	"os"
	"path/filepath"
	"strings"
	"tailpost/internal/global"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) (path string) {
	t.Helper()
	path = filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(path, []byte(content), 0640)
	if err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return
}

func TestLoadConfig(t *testing.T) {
	t.Run("ValidFile", func(t *testing.T) {
		path := writeConfigFile(t, `{
			"store": {
				"url": "https://api.example.test",
				"table": "audit",
				"retryLimit": 5,
				"retryInterval": "250ms"
			},
			"inputs": {
				"paths": ["/var/log/app.log", "json:/var/log/app.json", "-"]
			},
			"discovery": {
				"rescanInterval": "3s"
			},
			"beats": {
				"enabled": true,
				"address": "collector.example.test:5044"
			},
			"metrics": {
				"collectionInterval": "10s",
				"maximumRetention": "30m",
				"enableHTTPQueryServer": true,
				"HTTPQueryServerPort": 19090
			},
			"autoscaling": {
				"enabled": true,
				"pollInterval": "2s",
				"minStreamQueueSize": 256,
				"maxStreamQueueSize": 2048,
				"minDeliveryQueueSize": 128,
				"maxDeliveryQueueSize": 1024
			}
		}`)

		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error loading valid config, got '%v'", err)
		}
		if cfg.Store.URL != "https://api.example.test" {
			t.Errorf("expected store url to parse, got '%s'", cfg.Store.URL)
		}
		if len(cfg.Inputs.Paths) != 3 {
			t.Errorf("expected 3 input paths, got %d", len(cfg.Inputs.Paths))
		}

		config, err := cfg.NewRelayConf()
		if err != nil {
			t.Fatalf("expected no error converting config, got '%v'", err)
		}

		if config.StoreTable != "audit" {
			t.Errorf("expected store table 'audit', got '%s'", config.StoreTable)
		}
		if config.RetryLimit != 5 {
			t.Errorf("expected retry limit 5, got %d", config.RetryLimit)
		}
		if config.RetryInterval != 250*time.Millisecond {
			t.Errorf("expected retry interval 250ms, got %v", config.RetryInterval)
		}
		if config.DiscoveryRescanInterval != 3*time.Second {
			t.Errorf("expected rescan interval 3s, got %v", config.DiscoveryRescanInterval)
		}
		if !config.BeatsEnabled || config.BeatsAddress != "collector.example.test:5044" {
			t.Errorf("expected beats mirror settings to parse, got enabled=%v address='%s'", config.BeatsEnabled, config.BeatsAddress)
		}
		if config.MetricCollectionInterval != 10*time.Second {
			t.Errorf("expected collection interval 10s, got %v", config.MetricCollectionInterval)
		}
		if config.MetricMaxAge != 30*time.Minute {
			t.Errorf("expected metric retention 30m, got %v", config.MetricMaxAge)
		}
		if !config.MetricQueryServerEnabled || config.MetricQueryServerPort != 19090 {
			t.Errorf("expected metric server settings to parse, got enabled=%v port=%d", config.MetricQueryServerEnabled, config.MetricQueryServerPort)
		}
		if !config.AutoscaleEnabled || config.AutoscaleCheckInterval != 2*time.Second {
			t.Errorf("expected autoscale settings to parse, got enabled=%v interval=%v", config.AutoscaleEnabled, config.AutoscaleCheckInterval)
		}
		if config.MinStreamQueueSize != 256 || config.MaxStreamQueueSize != 2048 {
			t.Errorf("expected stream queue bounds 256/2048, got %d/%d", config.MinStreamQueueSize, config.MaxStreamQueueSize)
		}
		if config.MinDeliveryQueueSize != 128 || config.MaxDeliveryQueueSize != 1024 {
			t.Errorf("expected delivery queue bounds 128/1024, got %d/%d", config.MinDeliveryQueueSize, config.MaxDeliveryQueueSize)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
		if err == nil {
			t.Fatalf("expected error for missing config file")
		}
	})

	t.Run("InvalidSyntax", func(t *testing.T) {
		path := writeConfigFile(t, `{"store": {`)
		_, err := LoadConfig(path)
		if err == nil {
			t.Fatalf("expected error for invalid config syntax")
		}
		if !strings.Contains(err.Error(), "invalid config syntax") {
			t.Errorf("expected syntax error to name the problem, got '%v'", err)
		}
	})
}

func TestNewRelayConf_BadDurations(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *JSONConfig)
		errorText string
	}{
		{
			name:      "store retry interval",
			mutate:    func(cfg *JSONConfig) { cfg.Store.RetryInterval = "soon" },
			errorText: "retry interval",
		},
		{
			name:      "discovery rescan interval",
			mutate:    func(cfg *JSONConfig) { cfg.Discovery.RescanInterval = "often" },
			errorText: "rescan interval",
		},
		{
			name:      "autoscale poll interval",
			mutate:    func(cfg *JSONConfig) { cfg.AutoScaling.PollInterval = "5" },
			errorText: "autoscale check interval",
		},
		{
			name:      "metric max age",
			mutate:    func(cfg *JSONConfig) { cfg.Metrics.MaxAge = "forever" },
			errorText: "metric max age",
		},
		{
			name:      "metric collection interval",
			mutate:    func(cfg *JSONConfig) { cfg.Metrics.Interval = "10" },
			errorText: "collection interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cfg JSONConfig
			tt.mutate(&cfg)

			_, err := cfg.NewRelayConf()
			if err == nil {
				t.Fatalf("expected duration parse error")
			}
			if !strings.Contains(err.Error(), tt.errorText) {
				t.Errorf("expected error containing '%s', got '%v'", tt.errorText, err)
			}
		})
	}
}

func TestSetDefaults(t *testing.T) {
	t.Run("FillsMissing", func(t *testing.T) {
		cfg := Config{}
		cfg.setDefaults()

		if cfg.StoreTable != global.DefaultStoreTable {
			t.Errorf("expected default store table '%s', got '%s'", global.DefaultStoreTable, cfg.StoreTable)
		}
		if cfg.RetryLimit != global.DefaultRetryLimit {
			t.Errorf("expected default retry limit %d, got %d", global.DefaultRetryLimit, cfg.RetryLimit)
		}
		if cfg.RetryInterval != global.DefaultRetryInterval {
			t.Errorf("expected default retry interval %v, got %v", global.DefaultRetryInterval, cfg.RetryInterval)
		}
		if cfg.DiscoveryRescanInterval != global.DefaultDiscoveryInterval {
			t.Errorf("expected default rescan interval %v, got %v", global.DefaultDiscoveryInterval, cfg.DiscoveryRescanInterval)
		}
		if cfg.MinStreamQueueSize != global.DefaultMinQueueSize || cfg.MaxStreamQueueSize != global.DefaultMaxQueueSize {
			t.Errorf("expected default stream queue bounds, got %d/%d", cfg.MinStreamQueueSize, cfg.MaxStreamQueueSize)
		}
		if cfg.MinDeliveryQueueSize != global.DefaultMinQueueSize || cfg.MaxDeliveryQueueSize != global.DefaultMaxQueueSize {
			t.Errorf("expected default delivery queue bounds, got %d/%d", cfg.MinDeliveryQueueSize, cfg.MaxDeliveryQueueSize)
		}
		if cfg.MetricQueryServerPort != global.HTTPListenPortRelay {
			t.Errorf("expected default metric server port %d, got %d", global.HTTPListenPortRelay, cfg.MetricQueryServerPort)
		}

		// Beats stays opt-in
		if cfg.BeatsEnabled || cfg.BeatsAddress != "" {
			t.Errorf("expected beats mirror to stay disabled, got enabled=%v address='%s'", cfg.BeatsEnabled, cfg.BeatsAddress)
		}
	})

	t.Run("KeepsConfigured", func(t *testing.T) {
		cfg := Config{
			StoreTable:    "audit",
			RetryLimit:    3,
			RetryInterval: 50 * time.Millisecond,
		}
		cfg.setDefaults()

		if cfg.StoreTable != "audit" || cfg.RetryLimit != 3 || cfg.RetryInterval != 50*time.Millisecond {
			t.Errorf("expected configured values to survive, got table='%s' limit=%d interval=%v", cfg.StoreTable, cfg.RetryLimit, cfg.RetryInterval)
		}
	})

	t.Run("BeatsAddressDefaultsOnlyWhenEnabled", func(t *testing.T) {
		cfg := Config{BeatsEnabled: true}
		cfg.setDefaults()

		if cfg.BeatsAddress != global.DefaultBeatsAddr {
			t.Errorf("expected default beats address '%s', got '%s'", global.DefaultBeatsAddr, cfg.BeatsAddress)
		}
	})
}
