package install

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"tailpost/internal/global"
)

const unitFilePath string = "/etc/systemd/system/tailpost.service"

// Runs systemctl and hands back trimmed combined output alongside the error.
func systemctl(args ...string) (output string, err error) {
	raw, err := exec.Command("systemctl", args...).CombinedOutput()
	output = strings.Trim(string(raw), "\n")
	return
}

// Writes the rendered unit file and enables it. The service is left stopped
// so the operator can adjust the configuration first.
func installService() (err error) {
	unitName := filepath.Base(unitFilePath)

	raw, err := installationFiles.ReadFile("static-files/" + unitName)
	if err != nil {
		err = fmt.Errorf("unable to retrieve service file from embedded filesystem: %v", err)
		return
	}

	// Inject install paths into the unit template
	unit := strings.Replace(string(raw), "$executableFilePath", global.DefaultBinaryPath, 1)
	unit = strings.Replace(unit, "$configFilePath", global.DefaultConfigPath, 1)
	unit = strings.Replace(unit, "$tokenEnvFilePath", global.DefaultTokenEnvFile, 1)

	err = os.WriteFile(unitFilePath, []byte(unit), 0644)
	if err != nil {
		return
	}

	output, err := systemctl("daemon-reload")
	if err != nil {
		err = fmt.Errorf("failed to reload systemd units: %v: %s", err, output)
		return
	}

	output, err = systemctl("is-enabled", unitName)
	if err != nil {
		// A disabled unit reports through the exit code, not a failure
		if !strings.Contains(output, "disabled") {
			err = fmt.Errorf("failed to check systemd service enablement status: %v: %s", err, output)
			return
		}
		err = nil
	}

	if !strings.EqualFold(output, "enabled") {
		output, err = systemctl("enable", unitName)
		if err != nil {
			err = fmt.Errorf("failed to enable systemd service: %v: %s", err, output)
			return
		}
	}

	fmt.Printf("Successfully installed Systemd service\n")
	fmt.Printf("  IMPORTANT: modify the configuration to your needs and start the service with 'systemctl start %s'\n", unitName)
	return
}

// Best-effort teardown: disable, stop, remove the unit file, reload.
func uninstallService() (err error) {
	unitName := filepath.Base(unitFilePath)

	output, err := systemctl("is-enabled", unitName)
	if err != nil {
		// Already disabled or never installed, both fine for a teardown
		if !strings.Contains(output, "not-found") && !strings.Contains(output, "disabled") {
			err = fmt.Errorf("failed to check systemd service enablement status: %v: %s", err, output)
			return
		}
		err = nil
	}

	if strings.EqualFold(output, "enabled") {
		output, err = systemctl("disable", unitName)
		if err != nil {
			err = fmt.Errorf("failed to disable systemd service: %v: %s", err, output)
			return
		}
	}

	// is-active exits non-zero for inactive and unknown units alike
	output, _ = systemctl("is-active", unitName)
	if strings.EqualFold(output, "active") {
		output, err = systemctl("stop", unitName)
		if err != nil {
			err = fmt.Errorf("failed to stop systemd service: %v: %s", err, output)
			return
		}
	}

	err = removePath(unitFilePath)
	if err != nil {
		return
	}

	output, err = systemctl("daemon-reload")
	if err != nil {
		err = fmt.Errorf("failed to reload systemd units: %v: %s", err, output)
		return
	}

	fmt.Printf("Successfully uninstalled systemd service\n")
	return
}
