//go:build !unix

package runner

import (
	"os/exec"
	"time"
)

// configureCancel bounds how long Wait blocks on pipes still held open by
// grandchildren once the child has been killed.
func configureCancel(cmd *exec.Cmd) {
	cmd.WaitDelay = time.Second
}

func exitStatus(exitErr *exec.ExitError) int {
	return exitErr.ExitCode()
}
