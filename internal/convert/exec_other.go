//go:build !windows

package convert

import "os/exec"

func hideWindowOnWindows(cmd *exec.Cmd) {
	// Nothing to hide off Windows.
}
