package install

import (
	"encoding/json"
	"fmt"
	"os"
	"tailpost/internal/global"
	"tailpost/internal/relay"

	"golang.org/x/term"
)

// The template lands only when no config exists yet, or when the operator
// confirms the overwrite at a terminal.
func installConfig() (err error) {
	err = os.MkdirAll(global.DefaultConfigDir, 0755)
	if err != nil {
		err = fmt.Errorf("failed to create configuration directory: %v", err)
		return
	}

	_, statErr := os.Stat(global.DefaultConfigPath)
	if statErr == nil {
		// Overwriting needs an interactive confirmation
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Printf("Existing configuration file present, not overwriting\n")
			return
		}

		question := fmt.Sprintf("Configuration file already exists at '%s'. Are you SURE you want to overwrite it?", global.DefaultConfigPath)
		if !confirm(question) {
			fmt.Printf("Not overwriting configuration file\n")
			return
		}
	}

	err = CreateTemplateConfig(global.DefaultConfigPath)
	if err != nil {
		return
	}

	fmt.Printf("Successfully wrote template configuration file to '%s'\n", global.DefaultConfigPath)
	fmt.Printf("  IMPORTANT: place the bearer token in '%s' as %s=<token> (mode 0600)\n", global.DefaultTokenEnvFile, global.EnvToken)
	return
}

func uninstallConfig() (err error) {
	err = os.RemoveAll(global.DefaultConfigDir)
	if err != nil {
		return
	}

	fmt.Printf("Successfully removed configuration directory '%s'\n", global.DefaultConfigDir)
	return
}

// Writes a starter configuration pointing at a placeholder store.
func CreateTemplateConfig(filepath string) (err error) {
	if filepath == "" {
		err = fmt.Errorf("specify template file path via the --config/-c arguments")
		return
	}

	confBytes, err := json.MarshalIndent(templateConfig(), "", "  ")
	if err != nil {
		err = fmt.Errorf("error marshaling new config: %v", err)
		return
	}
	confBytes = append(confBytes, '\n')

	err = os.WriteFile(filepath, confBytes, 0600)
	if err != nil {
		err = fmt.Errorf("failed to write config to file: %v", err)
		return
	}
	return
}

func templateConfig() (newCfg relay.JSONConfig) {
	newCfg.Store.URL = "https://example.supabase.co"
	newCfg.Store.Table = global.DefaultStoreTable
	newCfg.Store.RetryLimit = global.DefaultRetryLimit
	newCfg.Store.RetryInterval = "1s"

	newCfg.Inputs.Paths = []string{"/var/log/app/stdout.log", "json:/var/lib/docker/containers/*/*-json.log"}

	newCfg.Discovery.RescanInterval = "2s"

	newCfg.Beats.Enabled = false
	newCfg.Beats.Address = global.DefaultBeatsAddr

	newCfg.AutoScaling.Enabled = true
	newCfg.AutoScaling.PollInterval = "5s"
	newCfg.AutoScaling.MinStreamQueueSize = global.DefaultMinQueueSize
	newCfg.AutoScaling.MaxStreamQueueSize = global.DefaultMaxQueueSize
	newCfg.AutoScaling.MinDeliveryQueueSize = global.DefaultMinQueueSize
	newCfg.AutoScaling.MaxDeliveryQueueSize = global.DefaultMaxQueueSize

	newCfg.Metrics.MaxAge = "72h"
	newCfg.Metrics.Interval = "5s"
	newCfg.Metrics.EnableQueryServer = true
	newCfg.Metrics.QueryServerPort = global.HTTPListenPortRelay
	return
}
