package focus

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// XOracle compares the host's own window id against the compositor's
// reported active window. The own id is resolved once and cached for the
// process lifetime; the active window is re-read on every call.
type XOracle struct {
	pid int
	log *zap.SugaredLogger
	run runner

	mu       sync.Mutex
	windowID uint64
	resolved bool
}

func NewXOracle(pid int, log *zap.SugaredLogger) *XOracle {
	return &XOracle{pid: pid, log: log, run: runCommand}
}

func (o *XOracle) IsHostFocused() bool {
	own, err := o.ownWindowID()
	if err != nil {
		o.log.Debugw("resolve own window id", "error", err)
		return false
	}

	active, err := o.activeWindowID()
	if err != nil {
		o.log.Debugw("query active window", "error", err)
		return false
	}

	return own == active
}

func (o *XOracle) ownWindowID() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.resolved {
		return o.windowID, nil
	}

	out, err := o.run("xdotool", "search", "--onlyvisible", "--pid", strconv.Itoa(o.pid))
	if err != nil {
		return 0, fmt.Errorf("search window for pid %d: %w", o.pid, err)
	}

	// Multiple windows may match; the toplevel is listed first.
	first := strings.Fields(out)
	if len(first) == 0 {
		return 0, fmt.Errorf("no window for pid %d", o.pid)
	}

	id, err := parseWindowID(first[0])
	if err != nil {
		return 0, err
	}

	o.windowID = id
	o.resolved = true
	return id, nil
}

func (o *XOracle) activeWindowID() (uint64, error) {
	out, err := o.run("xdotool", "getactivewindow")
	if err == nil {
		return parseWindowID(out)
	}

	// xprop fallback, output like "_NET_ACTIVE_WINDOW(WINDOW): window id # 0x3c00007"
	out, err = o.run("xprop", "-root", "_NET_ACTIVE_WINDOW")
	if err != nil {
		return 0, err
	}

	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty xprop output")
	}

	return parseWindowID(fields[len(fields)-1])
}

// parseWindowID accepts decimal (xdotool) and hex (xprop) window ids.
func parseWindowID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("parse window id %q: %w", s, err)
	}
	return id, nil
}
