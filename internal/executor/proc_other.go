//go:build !unix

package executor

import "os/exec"

// setProcessGroup is a no-op here; cancellation kills the direct child only.
func setProcessGroup(cmd *exec.Cmd) {}
