package web

import (
	"os/exec"
	"runtime"

	"github.com/pterm/pterm"
)

// browserCommand returns the command that opens url on goos, or nil.
func browserCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "linux":
		return exec.Command("xdg-open", url)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		return exec.Command("open", url)
	}
	return nil
}

// openBrowser tries to open the default browser with the given URL. The user
// can still navigate there manually when it fails.
func openBrowser(url string) {
	cmd := browserCommand(runtime.GOOS, url)
	if cmd == nil {
		return
	}
	if err := cmd.Start(); err != nil {
		pterm.Debug.Printf("Could not open browser: %v\n", err)
	}
}
