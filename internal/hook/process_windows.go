// SPDX-License-Identifier: MPL-2.0

//go:build windows

package hook

import "os/exec"

// terminate kills the hook process outright. Windows has no portable
// graceful-termination signal, so the grace period is effectively zero.
func terminate(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	return cmd.Process.Kill()
}
