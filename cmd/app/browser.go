package main

import (
	"os/exec"
	"runtime"

	"go.uber.org/zap"

	"pricedesk/pkg/log"
)

// openBrowser opens url in the desktop's default browser. Failure is only logged.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		log.Warn("could not open browser", zap.String("url", url), zap.Error(err))
		return
	}
	go func() { _ = cmd.Wait() }()
}
