package reset

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

var resetArgs = []string{"set", "org.gnome.desktop.input-sources", "current", "0"}

// GSettings resets the layout by spawning the gsettings CLI. The call is
// fire-and-forget: Start errors are returned, exit status is reaped and
// logged in the background, never retried.
type GSettings struct {
	// Path overrides the gsettings binary, mainly for tests.
	Path string

	log *zap.SugaredLogger
}

func NewGSettings(log *zap.SugaredLogger) *GSettings {
	return &GSettings{log: log}
}

func (g *GSettings) Reset() error {
	path := g.Path
	if path == "" {
		path = "gsettings"
	}

	var out bytes.Buffer
	cmd := exec.Command(path, resetArgs...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("gsettings: %w", err)
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			g.log.Warnw("gsettings reset failed",
				"error", err,
				"output", strings.TrimSpace(out.String()),
			)
		}
	}()

	return nil
}
