//go:build windows

package convert

import (
	"os/exec"
	"syscall"
)

// hideWindowOnWindows keeps the soffice console window from flashing up.
func hideWindowOnWindows(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: 0x08000000, // CREATE_NO_WINDOW
	}
}
