package shared

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// opener builds the platform command; swapped out in tests.
var opener = func(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// OpenPath opens a saved file with the system default handler (image viewer, archive manager).
//
// Supports macOS, Linux, and Windows platforms.
func OpenPath(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	var name string
	var args []string
	switch rt := getRuntime(); rt {
	case "darwin":
		name, args = "open", []string{abs}
	case "linux":
		name, args = "xdg-open", []string{abs}
	case "windows":
		name, args = "cmd", []string{"/c", "start", "", abs}
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := opener(name, args...); err != nil {
		return fmt.Errorf("failed to open %s: %w", abs, err)
	}
	return nil
}
