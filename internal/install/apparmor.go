package install

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"tailpost/internal/global"
)

const appArmorProfilePath string = "/etc/apparmor.d/" + global.DefaultAAProfName

// The kernel exposes loaded profiles here when the AppArmor LSM is active.
func apparmorActive() (active bool, err error) {
	_, err = os.Stat("/sys/kernel/security/apparmor/profiles")
	if err == nil {
		active = true
		return
	}
	if os.IsNotExist(err) {
		err = nil
		return
	}
	err = fmt.Errorf("unable to check if AppArmor is supported by this system: %v", err)
	return
}

// Loads the bundled AppArmor profile when the LSM is active. Systems without
// AppArmor skip this step without error.
func installAAProfile() (err error) {
	active, err := apparmorActive()
	if err != nil {
		return
	}
	if !active {
		fmt.Printf("AppArmor not supported by this system\n")
		return
	}

	raw, err := installationFiles.ReadFile("static-files/" + global.DefaultAAProfName)
	if err != nil {
		err = fmt.Errorf("unable to retrieve profile file from embedded filesystem: %v", err)
		return
	}

	// Inject install paths into the profile template
	profile := strings.Replace(string(raw), "=$executableFilePath", "="+global.DefaultBinaryPath, 1)
	profile = strings.Replace(profile, "=$configurationDirPath", "="+global.DefaultConfigDir, 1)

	err = os.WriteFile(appArmorProfilePath, []byte(profile), 0644)
	if err != nil {
		err = fmt.Errorf("failed to write apparmor profile: %v", err)
		return
	}

	output, err := exec.Command("apparmor_parser", "-r", appArmorProfilePath).CombinedOutput()
	if err != nil {
		err = fmt.Errorf("failed to reload apparmor profile: %v: %s", err, string(output))
		return
	}

	fmt.Printf("Successfully installed AppArmor Profile\n")
	return
}

func uninstallAAProfile() (err error) {
	active, err := apparmorActive()
	if err != nil || !active {
		return
	}

	// Unloading the profile from inside its own confinement is denied
	if strings.Contains(os.Args[0], global.DefaultBinaryPath) {
		fmt.Printf("WARNING: uninstall will fail if calling this binary from within the apparmor profile\n")
		fmt.Printf("  Run this command and retry the uninstall: 'apparmor_parser -R %s'\n", appArmorProfilePath)
	}

	output, err := exec.Command("apparmor_parser", "-R", appArmorProfilePath).CombinedOutput()
	if err != nil && !strings.Contains(string(output), "not found, skipping") {
		err = fmt.Errorf("failed to disable apparmor profile: %v: %s", err, string(output))
		return
	}

	err = removePath(appArmorProfilePath)
	if err != nil {
		err = fmt.Errorf("failed to remove apparmor profile: %v", err)
		return
	}

	fmt.Printf("Successfully uninstalled AppArmor Profile\n")
	return
}
