package web

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"log/slog"

	"scriber/internal/logging"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenBrowser opens the default system browser at url. Supports macOS,
// Linux, and Windows.
func OpenBrowser(url string) error {
	var cmd *exec.Cmd
	switch rt := getRuntime(); rt {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	default:
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}
	return nil
}

// OpenBrowserAfter opens the browser once delay has passed, giving the
// server time to start listening. Canceling ctx skips the launch.
func OpenBrowserAfter(ctx context.Context, delay time.Duration, url string, logger *slog.Logger) {
	if logger == nil {
		logger = logging.NewNop()
	}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := OpenBrowser(url); err != nil {
			logger.Warn("could not open browser",
				logging.String("url", url),
				logging.Error(err))
		}
	}()
}
