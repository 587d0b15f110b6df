//go:build windows

package exec

import (
	"os/exec"
)

// Windows has no Unix-style process groups.
func setPlatformProcessGroup(cmd *exec.Cmd) {}

func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}

// There is no way to deliver Ctrl+C to a console-less child, so interrupt
// falls back to kill.
func interruptProcessGroup(cmd *exec.Cmd) error {
	return killProcessGroup(cmd)
}
