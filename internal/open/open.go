// Package open launches the user's web browser.
package open

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// URL opens u in the browser named by $BROWSER, or the platform default.
func URL(u string) error {
	cmd := browserCommand(os.Getenv("BROWSER"), runtime.GOOS, u)
	if cmd == nil {
		return fmt.Errorf("no browser launcher for %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}
	// the launcher exits once the browser has the url; don't leave a zombie
	go cmd.Wait()
	return nil
}

func browserCommand(browser, goos, u string) *exec.Cmd {
	if browser != "" {
		fields := strings.Fields(browser)
		args := append(fields[1:], u)
		return exec.Command(fields[0], args...)
	}

	switch goos {
	case "darwin":
		return exec.Command("open", u)
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", u)
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", u)
	default:
		return nil
	}
}
