package portal

import (
	"errors"
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
)

var ErrNoSession = errors.New("DBUS_SESSION_BUS_ADDRESS is not set, no session bus available")

// Connect opens a private connection to the session bus. A private
// connection lets Unregister tear the signal stream down without touching
// any shared connection other code might hold.
func Connect() (*dbus.Conn, error) {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		return nil, ErrNoSession
	}

	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, fmt.Errorf("dial session bus: %w", err)
	}

	if err := conn.Auth(nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}

	if err := conn.Hello(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}

	return conn, nil
}
