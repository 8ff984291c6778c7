//go:build windows

package agent

import (
	"os/exec"
	"strconv"
)

// setProcessGroup is a no-op on Windows; descendant termination is handled
// by killProcessGroup via taskkill's tree flag.
func setProcessGroup(cmd *exec.Cmd) {}

// killProcessGroup terminates the agent and its descendants.
func killProcessGroup(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
	return kill.Run()
}
