package cli

import (
	"flag"
	"fmt"
	"os"
	"tailpost/internal/global"
	"tailpost/internal/install"
)

// Install, uninstall, and config template generation for the local daemon
func SetupMode(cliOpts *global.CommandSet, commandname string, args []string) {
	var installDaemon bool
	var uninstallDaemon bool
	var newConfTemplate bool
	var templateConfPath string

	commandFlags := flag.NewFlagSet(commandname, flag.ExitOnError)
	SetGlobalArguments(commandFlags)
	commandFlags.BoolVar(&installDaemon, "install", false, "Install/Upgrade the watch daemon")
	commandFlags.BoolVar(&uninstallDaemon, "uninstall", false, "Remove the watch daemon")
	commandFlags.BoolVar(&newConfTemplate, "config-template", false, "Create new template config (using config-path argument)")
	commandFlags.StringVar(&templateConfPath, "c", global.DefaultConfigPath, "Path to template config file")
	commandFlags.StringVar(&templateConfPath, "config", global.DefaultConfigPath, "Path to template config file")

	commandFlags.Usage = func() {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
	}
	if len(args) < 1 {
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}
	commandFlags.Parse(args[0:])

	var err error
	switch {
	case newConfTemplate:
		err = install.CreateTemplateConfig(templateConfPath)
	case installDaemon:
		install.Run()
	case uninstallDaemon:
		install.Remove()
	default:
		PrintHelpMenu(commandFlags, commandname, cliOpts)
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
