package cli

import "tailpost/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Top of the command tree
	root := &global.CommandSet{
		Description:     "Tailpost",
		FullDescription: "  Tails log files, classifies lines and delivers them in order to a remote store",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Watching
	root.ChildCommands["watch"] = &global.CommandSet{
		CommandName:     "watch",
		Description:     "Watch Log Sources",
		FullDescription: "Tails configured files and standard input, classifies each line and delivers records to the remote store",
		UsageOption:     "[[json:]path...]",
		ChildCommands:   nil,
	}

	// Row updates
	root.ChildCommands["update"] = &global.CommandSet{
		CommandName:     "update",
		Description:     "Update a Stored Row",
		FullDescription: "Applies a one-shot update to a single row in a remote store table",
		ChildCommands:   nil,
	}

	// Install and removal
	root.ChildCommands["configure"] = &global.CommandSet{
		CommandName:     "configure",
		Description:     "Install and Configure",
		FullDescription: "Installs or removes the daemon on the local system and generates template configuration files",
		ChildCommands:   nil,
	}

	// Build identification
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Prints the version, build details and platform of this binary",
	}

	cmdOpts = root
	return
}
