// Handles installation and removal of the relay on the local system
package install

import (
	"bufio"
	"embed"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Profile, unit and completion files ship inside the binary
//
//go:embed static-files/*
var installationFiles embed.FS

type installStep struct {
	what string
	run  func() error
}

// Installs everything end to end. Safe to rerun, the first failed step
// aborts the install.
func Run() {
	mustBeRoot("Installation")

	steps := []installStep{
		{"installing binary", installBinary},
		{"setting bash autocomplete", installBashAutocomplete},
		{"with template config", installConfig},
		{"with AppArmor profile", installAAProfile},
		{"with Systemd service", installService},
	}
	for _, step := range steps {
		err := step.run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error %s: %v\n", step.what, err)
			os.Exit(1)
		}
	}

	fmt.Printf("Installation completed successfully\n")
}

// Full uninstall. Steps run best-effort so one failure does not strand the rest.
func Remove() {
	// The safety prompt needs a terminal, scripted removals skip it
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if !confirm("Are you SURE you want to uninstall? (this will remove the configuration files)") {
			fmt.Printf("Aborting uninstall\n")
			return
		}
	}

	mustBeRoot("Uninstall")

	steps := []installStep{
		{"with AppArmor profile", uninstallAAProfile},
		{"with Systemd service", uninstallService},
		{"removing binary", uninstallBinary},
		{"removing bash autocomplete", uninstallBashAutocomplete},
		{"with template config", uninstallConfig},
	}
	for _, step := range steps {
		err := step.run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error %s: %v\n", step.what, err)
		}
	}
}

func mustBeRoot(action string) {
	if os.Geteuid() == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s must be run as root\n", action)
	os.Exit(1)
}

// Asks the question on stdout and requires an explicit yes on stdin.
func confirm(question string) (confirmed bool) {
	fmt.Printf("%s (yes/no): ", question)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')

	confirmed = strings.EqualFold(strings.TrimSpace(input), "yes")
	return
}

// Removes the file, treating an already missing path as done.
func removePath(path string) (err error) {
	err = os.Remove(path)
	if os.IsNotExist(err) {
		err = nil
	}
	return
}
