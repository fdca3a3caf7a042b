package reset

import (
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	shellService = "org.gnome.Shell"
	shellPath    = dbus.ObjectPath("/org/gnome/Shell")
	shellMethod  = "org.gnome.Shell.Eval"

	activateFirstSource = `imports.ui.status.keyboard.getInputSourceManager().inputSources[0].activate()`
)

// ShellEval resets the layout by evaluating a snippet inside GNOME Shell.
// Needed where the settings daemon no longer exports SetInputSource.
type ShellEval struct {
	conn caller
	log  *zap.SugaredLogger
}

func NewShellEval(conn caller, log *zap.SugaredLogger) *ShellEval {
	return &ShellEval{conn: conn, log: log}
}

func (s *ShellEval) Reset() error {
	obj := s.conn.Object(shellService, shellPath)
	call := obj.Go(shellMethod, dbus.FlagNoReplyExpected, nil, activateFirstSource)
	if call.Err != nil {
		return call.Err
	}
	return nil
}
