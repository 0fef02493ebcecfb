//go:build !windows

package common

import "os"

func configBase() (string, error) {
	return os.UserConfigDir()
}
