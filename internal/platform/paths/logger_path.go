package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// ResolveLogFile makes a relative log file path absolute against the config
// directory. An empty path means stderr only.
func ResolveLogFile(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p, nil
	}

	cfgPath, err := ConfigFilePath()
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(cfgPath) {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		cfgPath = filepath.Join(wd, cfgPath)
	}
	return filepath.Join(filepath.Dir(cfgPath), p), nil
}
