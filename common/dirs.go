package common

import (
	"os"
	"path/filepath"
	"strings"
)

// ConfigDir returns the directory holding cookie files and the vault key
// fallback. YTUPLOAD_CONFIG_DIR wins over the platform default.
func ConfigDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv(ConfigDirEnv)); v != "" {
		return v, nil
	}
	base, err := configBase()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

// TempRoot returns the parent directory for temporary browser profiles.
func TempRoot() string {
	if v := strings.TrimSpace(os.Getenv(TempRootEnv)); v != "" {
		return v
	}
	return os.TempDir()
}

// DefaultCookiePath returns <config dir>/cookies.json.
func DefaultCookiePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, CookieFileName), nil
}
