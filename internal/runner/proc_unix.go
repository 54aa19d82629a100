//go:build unix

package runner

import (
	"os/exec"
	"syscall"
)

// configureCancel starts the child in its own process group and kills the
// whole group on cancellation, so grandchildren holding the output pipes
// die with it.
func configureCancel(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

// exitStatus returns the exit code, or the negated signal number when the
// child was killed by a signal.
func exitStatus(exitErr *exec.ExitError) int {
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return -int(ws.Signal())
	}
	return exitErr.ExitCode()
}
