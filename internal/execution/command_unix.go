//go:build !windows

package execution

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// prepareCommand starts the executable in its own process group so that a
// cancelled run also takes down any helpers the test binary forked
func prepareCommand(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
	}
}
