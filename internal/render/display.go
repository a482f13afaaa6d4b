package render

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// viewerCommand returns the command that opens a file in the desktop's
// default image viewer.
func viewerCommand(goos, path string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{path}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	default:
		return "xdg-open", []string{path}
	}
}

// Show opens each chart in the default viewer without waiting for the
// viewer to close.
func Show(ctx context.Context, paths ...string) error {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		name, args := viewerCommand(runtime.GOOS, path)
		cmd := exec.Command(name, args...)
		if err := cmd.Start(); err != nil {
			return fmt.Errorf("failed to open %s with %s: %w", path, name, err)
		}
		go cmd.Wait() //nolint:errcheck
	}
	return nil
}
