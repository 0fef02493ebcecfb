//go:build !windows

package procwin

import "os/exec"

func configureCmd(cmd *exec.Cmd) {}
