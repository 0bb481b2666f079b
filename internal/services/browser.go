package services

import (
	"os/exec"
	"runtime"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrUnsupportedURL = goerr.New("refusing to open non-http url")
	ErrNoOpener       = goerr.New("no suitable browser opener found")
)

// OpenURL opens a channel page in the user's default browser.
func OpenURL(url string) error {
	if !strings.HasPrefix(url, "https://") && !strings.HasPrefix(url, "http://") {
		return goerr.Wrap(ErrUnsupportedURL, "cannot open url", goerr.V("url", url))
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "linux", "freebsd", "openbsd":
		// Linux: Try multiple openers in order
		openers := []string{"xdg-open", "sensible-browser", "x-www-browser"}
		for _, opener := range openers {
			if path, err := exec.LookPath(opener); err == nil {
				cmd = exec.Command(path, url)
				break
			}
		}
		if cmd == nil {
			return goerr.Wrap(ErrNoOpener, "cannot open url", goerr.V("url", url))
		}
	default:
		return goerr.Wrap(ErrNoOpener, "unsupported operating system", goerr.V("goos", runtime.GOOS))
	}

	if err := cmd.Start(); err != nil {
		return goerr.Wrap(err, "failed to start browser", goerr.V("command", cmd.Path))
	}
	// don't leave a zombie behind
	go cmd.Wait()
	return nil
}
