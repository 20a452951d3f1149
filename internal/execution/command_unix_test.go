//go:build !windows

package execution

import (
	"os/exec"
	"testing"
)

func TestPrepareCommand_Unix(t *testing.T) {
	cmd := exec.Command("true")
	prepareCommand(cmd)

	if cmd.SysProcAttr == nil || !cmd.SysProcAttr.Setpgid {
		t.Fatal("expected the command to get its own process group")
	}
	if cmd.Cancel == nil {
		t.Error("Cancel function should be set")
	}
}
