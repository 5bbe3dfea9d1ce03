package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/relay"
)

// Blocks until the daemon shuts down. A returned error is a fatal pipeline
// failure and should surface as a non-zero exit once logs are flushed.
func WatchMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) (err error) {
	var configPath string
	var storeURL string
	var tokenFlag string
	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetCommon(commandFlags, &configPath)
	SetStoreArguments(commandFlags, &storeURL, &tokenFlag)

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	// The default config path is optional, watch targets can come entirely
	// from positional arguments
	var jsonCfg relay.JSONConfig
	_, statErr := os.Stat(configPath)
	if statErr == nil {
		jsonCfg, err = relay.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	} else if configPath != global.DefaultConfigPath {
		fmt.Fprintf(os.Stderr, "Error: %v\n", statErr)
		os.Exit(1)
	}

	relayConfig, err := jsonCfg.NewRelayConf()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Positional [json:]path arguments watch alongside configured paths
	relayConfig.SourcePaths = append(relayConfig.SourcePaths, commandFlags.Args()...)

	if storeURL != "" {
		relayConfig.StoreURL = storeURL
	}
	if relayConfig.StoreURL == "" {
		relayConfig.StoreURL = os.Getenv(global.EnvStoreURL)
	}

	// Token prompts are off the table when stdin is a watch source
	stdinIsSource := false
	for _, rawPath := range relayConfig.SourcePaths {
		if rawPath == global.StdinPath {
			stdinIsSource = true
			break
		}
	}

	relayConfig.Token, err = resolveToken(tokenFlag, !stdinIsSource)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	watchDaemon := relay.NewDaemon(relayConfig)
	err = watchDaemon.Start(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting watch daemon: %v\n", err)
		os.Exit(1)
	}

	err = watchDaemon.Run()
	return
}
