package main

import (
	"context"
	"os/exec"
	"runtime"

	"bookmarks/popup/internal/navigator"

	log "github.com/sirupsen/logrus"
)

// newBrowserOpener opens URLs with the platform's default handler.
func newBrowserOpener() navigator.Opener {
	return navigator.OpenerFunc(func(ctx context.Context, url string) error {
		var cmd *exec.Cmd
		switch runtime.GOOS {
		case "darwin":
			cmd = exec.CommandContext(ctx, "open", url)
		case "windows":
			cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
		default:
			cmd = exec.CommandContext(ctx, "xdg-open", url)
		}

		log.Infof("🌐 Opening %s", url)
		return cmd.Start()
	})
}
