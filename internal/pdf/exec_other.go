//go:build !windows

package pdf

import "os/exec"

func hideWindowOnWindows(cmd *exec.Cmd) {
	// Nothing to hide off Windows.
}
