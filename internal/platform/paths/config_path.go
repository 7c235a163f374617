package paths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const AppName = "topproducts"

// EnvConfigPath overrides the machine-wide config location.
const EnvConfigPath = "TOPPRODUCTS_CONFIG"

func ConfigFilePath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}

	switch runtime.GOOS {
	case "windows":
		programData := os.Getenv("PROGRAMDATA")
		if programData == "" {
			programData = `C:\ProgramData`
		}
		return filepath.Join(programData, AppName, "config.yaml"), nil
	case "linux", "darwin":
		return filepath.Join("/etc", AppName, "config.yaml"), nil
	default:
		return "", errors.New("unsupported OS for machine-wide config")
	}
}
