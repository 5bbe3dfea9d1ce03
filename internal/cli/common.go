package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"tailpost/internal/global"

	"golang.org/x/term"
)

func SetGlobalArguments(fs *flag.FlagSet) (requestedLogLevel *int) {
	fs.IntVar(&global.Verbosity, "v", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(&global.Verbosity, "verbosity", 1, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	requestedLogLevel = &global.Verbosity
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", global.DefaultConfigPath, "Path to the configuration file")
	fs.StringVar(configPath, "config", global.DefaultConfigPath, "Path to the configuration file")
}

func SetStoreArguments(fs *flag.FlagSet, storeURL *string, token *string) {
	fs.StringVar(storeURL, "url", "", "Base URL of the remote store (falls back to "+global.EnvStoreURL+")")
	fs.StringVar(token, "t", "", "Access token for the remote store (falls back to "+global.EnvToken+")")
	fs.StringVar(token, "token", "", "Access token for the remote store (falls back to "+global.EnvToken+")")
}

// Resolves the store access token: flag value wins, then the environment,
// then an interactive prompt when stdin is a terminal and not a watch source.
func resolveToken(flagValue string, allowPrompt bool) (token string, err error) {
	token = strings.TrimSpace(flagValue)
	if token == "" {
		token = strings.TrimSpace(os.Getenv(global.EnvToken))
	}
	if token != "" {
		return
	}

	if !allowPrompt || !term.IsTerminal(int(os.Stdin.Fd())) {
		err = fmt.Errorf("no access token given: use --token or set %s", global.EnvToken)
		return
	}

	fmt.Printf("Access token for the remote store: ")
	rawToken, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		err = fmt.Errorf("failed to read token: %v", err)
		return
	}

	token = strings.TrimSpace(string(rawToken))
	if token == "" {
		err = fmt.Errorf("no access token given: use --token or set %s", global.EnvToken)
	}
	return
}
