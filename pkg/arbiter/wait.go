package arbiter

import (
	"os/exec"
	"syscall"
)

// waitChild waits for cmd to exit and decodes its status the way the
// original prints it: an exit code, or the signal that killed it.
func waitChild(cmd *exec.Cmd) (exitCode, signal int, signaled bool) {
	err := cmd.Wait()
	if err == nil {
		return 0, 0, false
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return -1, 0, false
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return exitErr.ExitCode(), 0, false
	}
	if status.Signaled() {
		return 0, int(status.Signal()), true
	}
	return status.ExitStatus(), 0, false
}
