package cli

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"tailpost/internal/global"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
General help using GNU software: <https://www.gnu.org/gethelp/>
`
)

// Locates a command by name anywhere in the two-level tree, returning
// the chain of parents above it
func findCommand(command string, rootCmd *global.CommandSet) (target *global.CommandSet, lineage []*global.CommandSet) {
	if command == "" || command == RootCLICommand {
		target = rootCmd
		return
	}

	if child, ok := rootCmd.ChildCommands[command]; ok {
		target = child
		lineage = []*global.CommandSet{rootCmd}
		return
	}

	for _, topCmd := range rootCmd.ChildCommands {
		if grandChild, ok := topCmd.ChildCommands[command]; ok {
			target = grandChild
			lineage = []*global.CommandSet{rootCmd, topCmd}
			return
		}
	}
	return
}

// Renders the complete help text for one command: usage line, description,
// subcommand table, and the option listing
func PrintHelpMenu(fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	const baseIndentSpaces = 2

	target, lineage := findCommand(command, rootCmd)
	if target == nil {
		fmt.Printf("Unknown command: %s\n", command)
		return
	}

	// Usage line walks the lineage down to the target
	usage := []string{os.Args[0]}
	for _, parent := range lineage {
		if parent.CommandName == RootCLICommand {
			continue
		}
		usage = append(usage, parent.CommandName)
	}
	if target != rootCmd {
		usage = append(usage, target.CommandName)
	}

	switch len(target.ChildCommands) {
	case 0:
	case 1:
		for name := range target.ChildCommands {
			usage = append(usage, name)
		}
	default:
		usage = append(usage, "[subcommand]")
	}
	if target.UsageOption != "" {
		usage = append(usage, target.UsageOption)
	}

	fmt.Printf("Usage: %s\n\n", strings.Join(usage, " "))

	if target == rootCmd {
		fmt.Println(target.Description)
		fmt.Println(target.FullDescription)
		fmt.Println()
	} else if target.FullDescription != "" {
		fmt.Println("  Description:")
		fmt.Printf("    %s\n\n", target.FullDescription)
	}

	printSubcommands(target, baseIndentSpaces)

	printFlagOptions(fs, baseIndentSpaces)

	if target == rootCmd {
		fmt.Print(helpMenuTrailer)
	}
}

// Sorted subcommand listing with descriptions lined up past the longest name
func printSubcommands(target *global.CommandSet, baseIndentSpaces int) {
	if len(target.ChildCommands) == 0 {
		return
	}

	fmt.Printf("%sSubcommands:\n", strings.Repeat(" ", baseIndentSpaces))

	longest := 0
	subNames := make([]string, 0, len(target.ChildCommands))
	for name := range target.ChildCommands {
		subNames = append(subNames, name)
		if len(name) > longest {
			longest = len(name)
		}
	}
	sort.Strings(subNames)

	entryIndent := strings.Repeat(" ", baseIndentSpaces+2)
	for _, name := range subNames {
		padding := strings.Repeat(" ", longest-len(name)+2)
		fmt.Printf("%s%s%s - %s\n", entryIndent, name, padding, target.ChildCommands[name].Description)
	}
	fmt.Println()
}

// Prints registered flags with short/long spellings merged onto one line
// and usage text aligned into a single column
func printFlagOptions(fs *flag.FlagSet, baseIndentSpaces int) {
	const shortLongJoiner string = ", " // the ", " in "  -c, --config  Path to..."
	const optionToUsageGap int = 2      // the gap before "Path to..." above

	type optionLine struct {
		names      []string
		usage      string
		defaultVal string
		hasShort   bool
	}

	// Short and long spellings of the same option carry identical usage text
	byUsage := make(map[string]*optionLine)
	fs.VisitAll(func(arg *flag.Flag) {
		line, seenUsage := byUsage[arg.Usage]
		if !seenUsage {
			line = &optionLine{usage: arg.Usage, defaultVal: arg.DefValue}
			byUsage[arg.Usage] = line
		}
		if len(arg.Name) == 1 {
			line.names = append(line.names, "-"+arg.Name)
			line.hasShort = true
		} else {
			line.names = append(line.names, "--"+arg.Name)
		}
	})

	options := make([]*optionLine, 0, len(byUsage))
	for _, line := range byUsage {
		// Short spelling first
		sort.Slice(line.names, func(indexA, indexB int) bool {
			return len(line.names[indexA]) < len(line.names[indexB])
		})
		options = append(options, line)
	}
	sort.Slice(options, func(indexA, indexB int) bool {
		return strings.ToLower(options[indexA].names[0]) < strings.ToLower(options[indexB].names[0])
	})

	// Long-only options line up with the long spellings of paired ones
	const longOnlyOffset = len("-x") + len(shortLongJoiner)

	maxLen := 0
	for _, line := range options {
		width := len(strings.Join(line.names, shortLongJoiner))
		if !line.hasShort {
			width += longOnlyOffset
		}
		if width > maxLen {
			maxLen = width
		}
	}

	fmt.Printf("%sOptions:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, line := range options {
		joined := strings.Join(line.names, shortLongJoiner)

		indentSpaces := baseIndentSpaces
		width := len(joined)
		if !line.hasShort {
			indentSpaces += longOnlyOffset
			width += longOnlyOffset
		}

		// Zero-value defaults add nothing to the usage text
		desc := line.usage
		if line.defaultVal != "" && line.defaultVal != "false" && line.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", line.defaultVal)
		}

		fmt.Printf("%s%s%s%s\n",
			strings.Repeat(" ", indentSpaces),
			joined,
			strings.Repeat(" ", maxLen-width+optionToUsageGap),
			desc)
	}
}
