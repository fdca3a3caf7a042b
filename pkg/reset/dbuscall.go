package reset

import (
	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"
)

const (
	keyboardService = "org.gnome.SettingsDaemon.Keyboard"
	keyboardPath    = dbus.ObjectPath("/org/gnome/SettingsDaemon/Keyboard")
	keyboardMethod  = "org.gnome.SettingsDaemon.Keyboard.SetInputSource"
)

// SettingsDaemon resets the layout with a SetInputSource(0) call on the
// keyboard settings daemon. No reply is requested; the notification stream
// is the only confirmation that matters.
type SettingsDaemon struct {
	conn caller
	log  *zap.SugaredLogger
}

func NewSettingsDaemon(conn caller, log *zap.SugaredLogger) *SettingsDaemon {
	return &SettingsDaemon{conn: conn, log: log}
}

func (s *SettingsDaemon) Reset() error {
	obj := s.conn.Object(keyboardService, keyboardPath)
	call := obj.Go(keyboardMethod, dbus.FlagNoReplyExpected, nil, uint32(0))
	if call.Err != nil {
		return call.Err
	}
	return nil
}
