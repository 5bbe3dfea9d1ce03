package global

// One node in the command tree rendered by the help menus
type CommandSet struct {
	CommandName     string                 // spelling the user types
	UsageOption     string                 // positional argument hint for the usage line
	Description     string                 // one-liner shown in the parent's subcommand table
	FullDescription string                 // paragraph shown on the command's own help page
	ChildCommands   map[string]*CommandSet // nil for leaf commands
}

type CtxKey string
