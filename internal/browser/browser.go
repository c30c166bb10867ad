// Package browser opens links in the user's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open opens url in the default browser. It returns once the launcher has
// started.
func Open(url string) error {
	name, args := command(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("opening %s: %w", url, err)
	}
	return nil
}

func command(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "cmd", []string{"/c", "start", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}

// Opener adapts Open to the interface the app's open-project action uses.
type Opener struct{}

// Open implements the app's Opener.
func (Opener) Open(url string) error { return Open(url) }
