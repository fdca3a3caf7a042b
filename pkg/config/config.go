// Package config loads the daemon configuration from a TOML file under the
// XDG config directory. A missing file means defaults; a broken file is an
// error.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

const (
	PolicyEchoFree = "echo-free"
	PolicyEchoing  = "echoing"
)

const (
	JournalSQLite = "sqlite"
	JournalJSON   = "json"
	JournalMemory = "memory"
	JournalOff    = "off"
)

type Config struct {
	// AvoidLayout is the layout the daemon switches away from at the OS
	// level. Accepts an xkb code ("ru") or a registry description
	// ("Russian").
	AvoidLayout string `toml:"avoid_layout"`

	// Policy picks the suppression policy for the deployed transport.
	Policy string `toml:"policy"`

	// ResetMode selects how the OS layout reset is issued:
	// gsettings, dbus or shell-eval.
	ResetMode string `toml:"reset_mode"`

	// ToggleCommand is the host application's input-method toggle
	// invocation. Empty disables toggling.
	ToggleCommand []string `toml:"toggle_command"`

	// Journal selects the decision journal backend.
	Journal string `toml:"journal"`

	// EvdevXMLPath points at the xkb layout registry.
	EvdevXMLPath string `toml:"evdev_xml_path"`

	Debug bool `toml:"debug"`
}

func Default() Config {
	return Config{
		AvoidLayout:  "ru",
		Policy:       PolicyEchoFree,
		ResetMode:    "gsettings",
		Journal:      JournalSQLite,
		EvdevXMLPath: "/usr/share/X11/xkb/rules/evdev.xml",
	}
}

// DefaultPath returns the config file location, creating parent
// directories as needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile("imbridge/config.toml")
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// JournalPath returns where the journal file for the given backend lives.
func JournalPath(name string) (string, error) {
	path, err := xdg.DataFile("imbridge/" + name)
	if err != nil {
		return "", fmt.Errorf("resolve journal path: %w", err)
	}
	return path, nil
}

// Load reads the file at path, falling back to defaults when it does not
// exist. Unknown keys are rejected so typos do not silently disable
// features.
func Load(path string) (Config, error) {
	cfg := Default()

	meta, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("unknown config keys in %s: %v", path, undecoded)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.AvoidLayout == "" {
		return errors.New("avoid_layout must not be empty")
	}

	switch c.Policy {
	case PolicyEchoFree, PolicyEchoing:
	default:
		return fmt.Errorf("unknown policy %q", c.Policy)
	}

	switch c.ResetMode {
	case "gsettings", "dbus", "shell-eval":
	default:
		return fmt.Errorf("unknown reset_mode %q", c.ResetMode)
	}

	switch c.Journal {
	case JournalSQLite, JournalJSON, JournalMemory, JournalOff:
	default:
		return fmt.Errorf("unknown journal backend %q", c.Journal)
	}

	return nil
}
