package imbridge

// LayoutID identifies a keyboard layout. It is an opaque, equality-comparable
// token: a language code like "ru" from the settings portal, or a slot
// ordinal formatted as a string ("0", "1") from the legacy indicator.
type LayoutID string

type EventSource int

const (
	SourceLegacy EventSource = iota
	SourcePortal
)

func (s EventSource) String() string {
	switch s {
	case SourceLegacy:
		return "legacy"
	case SourcePortal:
		return "portal"
	}
	return "unknown"
}

// Event is a single decoded layout-change notification. HasLayout is false
// for the echo-only deliveries some transports emit in pairs.
type Event struct {
	Source    EventSource
	Layout    LayoutID
	HasLayout bool
}

type FocusOracle interface {
	IsHostFocused() bool
}

// LayoutResetter requests the OS set the active layout back to the default
// slot. Implementations must not block on completion; the returned error
// only covers failure to issue the request.
type LayoutResetter interface {
	Reset() error
}

// InputMethodToggler flips the host application's internal input method
// exactly once per call.
type InputMethodToggler interface {
	Toggle() error
}

// Decision is the outcome the debouncer reached for one event.
type Decision string

const (
	DecisionResetAndToggle      Decision = "reset+toggle"
	DecisionToggle              Decision = "toggle"
	DecisionSuppressedDuplicate Decision = "suppressed-duplicate"
	DecisionSuppressedEcho      Decision = "suppressed-echo"
)

// Journal records debouncer decisions. Implementations live in pkg/journal.
type Journal interface {
	Record(ev Event, decision Decision) error
}
