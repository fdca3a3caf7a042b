// Package reset holds the action adapters: the three interchangeable ways
// of asking the OS to go back to the first configured input source, and the
// toggler that flips the host application's internal input method. Exactly
// one reset mode is active per deployment.
package reset

import (
	"fmt"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"imbridge/pkg/imbridge"
	"imbridge/pkg/portal"
)

const (
	ModeGSettings = "gsettings"
	ModeDBus      = "dbus"
	ModeShellEval = "shell-eval"
)

// caller is the part of *dbus.Conn the bus-backed adapters need.
type caller interface {
	Object(string, dbus.ObjectPath) dbus.BusObject
}

// New builds the resetter for the configured mode. The bus-backed modes
// open their own private connection so firing a reset never contends with
// the notification stream.
func New(mode string, log *zap.SugaredLogger) (imbridge.LayoutResetter, error) {
	switch mode {
	case ModeGSettings:
		return NewGSettings(log), nil
	case ModeDBus:
		conn, err := portal.Connect()
		if err != nil {
			return nil, fmt.Errorf("connect for settings daemon: %w", err)
		}
		return NewSettingsDaemon(conn, log), nil
	case ModeShellEval:
		conn, err := portal.Connect()
		if err != nil {
			return nil, fmt.Errorf("connect for shell eval: %w", err)
		}
		return NewShellEval(conn, log), nil
	}
	return nil, fmt.Errorf("unknown reset mode %q", mode)
}
