//go:build windows

package procwin

import (
	"os/exec"
	"syscall"
)

// configureCmd keeps PowerShell from flashing a console window on every
// poll.
func configureCmd(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
}
