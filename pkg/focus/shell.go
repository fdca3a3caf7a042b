package focus

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const focusWindowExpr = `global.display.focus_window ? global.display.focus_window.get_id().toString() : ""`

// ShellOracle is the backend for compositors that expose no stable window
// id to clients. The first successful query happens while the host is known
// to be focused (startup), so its result is cached as the host's identity
// token; every later call re-queries and compares.
type ShellOracle struct {
	log *zap.SugaredLogger
	run runner

	mu        sync.Mutex
	token     string
	haveToken bool
}

func NewShellOracle(log *zap.SugaredLogger) *ShellOracle {
	return &ShellOracle{log: log, run: runCommand}
}

func (o *ShellOracle) IsHostFocused() bool {
	token, err := o.activeWindowToken()
	if err != nil {
		o.log.Debugw("query focus window", "error", err)
		return false
	}
	if token == "" {
		return false
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.haveToken {
		o.token = token
		o.haveToken = true
		return true
	}

	return token == o.token
}

func (o *ShellOracle) activeWindowToken() (string, error) {
	out, err := o.run("gdbus", "call", "--session",
		"--dest", "org.gnome.Shell",
		"--object-path", "/org/gnome/Shell",
		"--method", "org.gnome.Shell.Eval",
		focusWindowExpr)
	if err != nil {
		return "", err
	}

	return parseEvalOutput(out)
}

// parseEvalOutput unpacks gdbus output of the form (true, "'value'").
func parseEvalOutput(out string) (string, error) {
	out = strings.TrimSpace(out)
	if !strings.HasPrefix(out, "(true,") {
		return "", fmt.Errorf("shell eval rejected: %s", out)
	}

	start := strings.Index(out, "'")
	end := strings.LastIndex(out, "'")
	if start == -1 || end <= start {
		return "", fmt.Errorf("unparseable shell eval output: %s", out)
	}

	return out[start+1 : end], nil
}
