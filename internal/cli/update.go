package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"tailpost/internal/externalio/store"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
)

// One-shot update of a single row in a remote store table
func UpdateMode(ctx context.Context, cliOpts *global.CommandSet, commandname string, args []string) {
	var storeURL string
	var tokenFlag string
	var table string
	var rowID string
	fields := make(map[string]any)

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	SetStoreArguments(commandFlags, &storeURL, &tokenFlag)
	commandFlags.StringVar(&table, "table", global.DefaultStoreTable, "Table holding the row")
	commandFlags.StringVar(&rowID, "id", "", "Identifier of the row to update")
	commandFlags.Func("set", "Column assignment as name=value (repeatable)", func(pair string) error {
		name, value, found := strings.Cut(pair, "=")
		if !found || name == "" {
			return fmt.Errorf("expected name=value, got '%s'", pair)
		}
		fields[name] = value
		return nil
	})

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])
	logctx.SetLogLevel(ctx, global.Verbosity)

	if storeURL == "" {
		storeURL = os.Getenv(global.EnvStoreURL)
	}
	if storeURL == "" {
		fmt.Fprintf(os.Stderr, "Error: no store URL given: use --url or set %s\n", global.EnvStoreURL)
		os.Exit(1)
	}
	if rowID == "" {
		fmt.Fprintf(os.Stderr, "Error: no row identifier given: use --id\n")
		os.Exit(1)
	}
	if len(fields) == 0 {
		fmt.Fprintf(os.Stderr, "Error: nothing to update: use --set name=value\n")
		os.Exit(1)
	}

	token, err := resolveToken(tokenFlag, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	client, err := store.New(storeURL, token)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = client.UpdateRow(ctx, table, rowID, fields)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error updating row: %v\n", err)
		os.Exit(1)
	}
}
