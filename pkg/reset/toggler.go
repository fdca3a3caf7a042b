package reset

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

var ErrNoToggleCommand = errors.New("no toggle command configured")

// CommandToggler invokes the host application's input-method toggle
// command. Unlike the resetters this call is synchronous: each completed
// run flips the host's input method exactly once.
type CommandToggler struct {
	argv []string
	log  *zap.SugaredLogger
}

func NewCommandToggler(argv []string, log *zap.SugaredLogger) (*CommandToggler, error) {
	if len(argv) == 0 {
		return nil, ErrNoToggleCommand
	}
	return &CommandToggler{argv: argv, log: log}, nil
}

func (t *CommandToggler) Toggle() error {
	var out bytes.Buffer

	cmd := exec.Command(t.argv[0], t.argv[1:]...)
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("toggle command: %w, output: %s", err, strings.TrimSpace(out.String()))
	}

	return nil
}

// NopToggler stands in when no toggle command is configured, so a partial
// deployment still resets layouts without touching the host.
type NopToggler struct {
	log *zap.SugaredLogger
}

func NewNopToggler(log *zap.SugaredLogger) *NopToggler {
	return &NopToggler{log: log}
}

func (t *NopToggler) Toggle() error {
	t.log.Debug("toggle requested but no toggle command configured")
	return nil
}
