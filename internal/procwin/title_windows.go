//go:build windows

package procwin

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

func windowTitle(ctx context.Context, run runFunc, pid int) (string, error) {
	script := "(Get-Process -Id " + strconv.Itoa(pid) + " -ErrorAction SilentlyContinue).MainWindowTitle"
	out, err := run(ctx, "powershell.exe", "-NoProfile", "-NonInteractive", "-Command", script)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", ErrUnsupported
		}
		return "", fmt.Errorf("query window title: %w", err)
	}
	return joinTitles(strings.Split(string(out), "\n")), nil
}
