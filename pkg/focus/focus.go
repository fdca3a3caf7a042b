// Package focus answers one question: does the host application window
// currently have input focus? Backends are probed at startup; when no
// backend matches the session, the answer is always no. Every query
// failure is also answered with no, so a broken windowing query can never
// cause a spurious correction.
package focus

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"

	"imbridge/pkg/imbridge"
)

// runner executes an external query and returns its trimmed output.
// Injected so tests never shell out.
type runner func(name string, args ...string) (string, error)

func runCommand(name string, args ...string) (string, error) {
	var out bytes.Buffer

	cmd := exec.Command(name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	outStr := strings.TrimSpace(out.String())
	if err != nil {
		return "", fmt.Errorf("%s: %w, output: %s", name, err, outStr)
	}

	return outStr, nil
}

// Probe selects a focus backend for the current session. hostPID is the
// host application's process id, used by the X11 backend to find its own
// window.
func Probe(hostPID int, log *zap.SugaredLogger) imbridge.FocusOracle {
	switch {
	case os.Getenv("WAYLAND_DISPLAY") != "":
		log.Infow("focus backend: gnome shell", "pid", hostPID)
		return NewShellOracle(log)
	case os.Getenv("DISPLAY") != "":
		log.Infow("focus backend: x11", "pid", hostPID)
		return NewXOracle(hostPID, log)
	default:
		log.Warn("no recognized windowing session, treating host as never focused")
		return Unfocused{}
	}
}

// Unfocused is the fallback oracle for unrecognized sessions.
type Unfocused struct{}

func (Unfocused) IsHostFocused() bool { return false }
