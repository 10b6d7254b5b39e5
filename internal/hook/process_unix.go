// SPDX-License-Identifier: MPL-2.0

//go:build unix

package hook

import (
	"os/exec"
	"syscall"
)

// terminate asks the hook process to shut down gracefully. The forced kill
// after the grace period is handled by exec.Cmd.WaitDelay.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Signal(syscall.SIGTERM)
}
