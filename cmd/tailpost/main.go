package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"tailpost/internal/cli"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
)

func main() {
	cliOpts := cli.DefineOptions()

	args := os.Args
	commandFlags := flag.NewFlagSet(args[0], flag.ExitOnError)
	requestedLogLevel := cli.SetGlobalArguments(commandFlags)

	commandFlags.Usage = func() {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
	}
	if len(args) < 2 {
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[1:])

	// Subcommand consumes the rest of the argument list
	command := args[1]
	args = args[2:]

	// Every mode shares one process-wide logger carried in the context.
	// Diagnostics go to stderr, stdout belongs to the delivered lines.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logctx.NewLogger("global", *requestedLogLevel, ctx.Done())
	ctx = logctx.WithLogger(ctx, logger)
	logctx.StartWatcher(logger, os.Stderr)

	var modeErr error
	switch command {
	case "watch":
		modeErr = cli.WatchMode(ctx, cliOpts, command, args)
	case "update":
		cli.UpdateMode(ctx, cliOpts, command, args)
	case "configure":
		cli.SetupMode(cliOpts, command, args)
	case "help":
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
	case "version":
		if len(args) > 0 && (args[0] == "--verbosity" || args[0] == "-v") {
			fmt.Printf("Tailpost %s\n", global.ProgVersion)
			fmt.Printf("Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
			fmt.Print("License GPLv3+: GNU GPL version 3 or later <https://gnu.org/licenses/gpl.html>\n")
		} else {
			fmt.Println(global.ProgVersion)
		}
	default:
		cli.PrintHelpMenu(commandFlags, cli.RootCLICommand, cliOpts)
		os.Exit(1)
	}

	// Drain pending diagnostics before deciding the exit code
	cancel()
	logger.Wake()
	logger.Wait()

	if modeErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", modeErr)
		os.Exit(1)
	}
}
