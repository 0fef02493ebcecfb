//go:build windows

package common

import (
	"os"
	"strings"
)

// configBase prefers LOCALAPPDATA: profiles and cookies are machine-local,
// non-roaming state.
func configBase() (string, error) {
	if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
		return v, nil
	}
	return os.UserConfigDir()
}
