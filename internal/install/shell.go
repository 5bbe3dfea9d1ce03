package install

import (
	"fmt"
	"os"
	"path/filepath"
	"tailpost/internal/global"
)

const sysAutocompleteDir string = "/usr/share/bash-completion/completions"

// Resolves where the completion file belongs: the system dir when present,
// otherwise a per-user completion dir (created when install is true).
func autocompletePath(install bool) (completionFilePath string, err error) {
	_, err = os.Stat(sysAutocompleteDir)
	if err == nil {
		completionFilePath = filepath.Join(sysAutocompleteDir, global.ProgBaseName)
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		err = fmt.Errorf("failed to find user home directory: %v", err)
		return
	}
	userDir := filepath.Join(homeDir, ".bash_completion.d")

	if install {
		err = os.MkdirAll(userDir, 0750)
		if err != nil {
			err = fmt.Errorf("failed to create user autocomplete dir: %v", err)
			return
		}

		fmt.Printf("System completion dir missing, installing bash completion under %s\n", userDir)
		fmt.Printf("Make sure ~/.bashrc sources ~/.bash_completion and ~/.bash_completion.d/*\n")
	}

	completionFilePath = filepath.Join(userDir, global.ProgBaseName)
	return
}

func installBashAutocomplete() (err error) {
	autoCompleteFunc, err := installationFiles.ReadFile("static-files/autocomplete.sh")
	if err != nil {
		err = fmt.Errorf("unable to retrieve autocomplete file from embedded filesystem: %v", err)
		return
	}

	autoCompleteFilePath, err := autocompletePath(true)
	if err != nil {
		return
	}

	err = os.WriteFile(autoCompleteFilePath, autoCompleteFunc, 0644)
	if err != nil {
		err = fmt.Errorf("failed to write autocompletion file: %v", err)
		return
	}
	return
}

func uninstallBashAutocomplete() (err error) {
	autoCompleteFilePath, err := autocompletePath(false)
	if err != nil {
		return
	}

	err = removePath(autoCompleteFilePath)
	if err != nil {
		err = fmt.Errorf("failed to remove autocompletion file: %v", err)
		return
	}

	fmt.Printf("Successfully removed shell autocompletion\n")
	return
}
