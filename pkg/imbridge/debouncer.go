package imbridge

import (
	"sync"

	"go.uber.org/zap"
)

// Policy selects how the debouncer tells genuine layout changes apart from
// echoes of its own reset action.
type Policy int

const (
	// PolicyEchoing is for transports where the reset action itself shows
	// up as a second notification that must not retrigger.
	PolicyEchoing Policy = iota
	// PolicyEchoFree is for transports where the reset produces no
	// observable notification of its own.
	PolicyEchoFree
)

// Debouncer consumes decoded layout-change events and drives at most one
// compensating reset+toggle per genuine, focused change. It owns all
// suppression state; HandleEvent is safe for concurrent use but the
// transport is expected to deliver events serially.
type Debouncer struct {
	policy Policy
	focus  FocusOracle
	reset  LayoutResetter
	toggle InputMethodToggler
	log    *zap.SugaredLogger

	mu       sync.Mutex
	avoid    LayoutID
	last     LayoutID
	hasLast  bool
	skipNext bool
	journal  Journal
}

func NewDebouncer(
	policy Policy,
	avoid LayoutID,
	focus FocusOracle,
	reset LayoutResetter,
	toggle InputMethodToggler,
	log *zap.SugaredLogger,
) *Debouncer {
	return &Debouncer{
		policy: policy,
		avoid:  avoid,
		focus:  focus,
		reset:  reset,
		toggle: toggle,
		log:    log,
	}
}

// SetJournal attaches an optional decision journal.
func (d *Debouncer) SetJournal(j Journal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.journal = j
}

// SetAvoidLayout swaps the avoidance layout at runtime (config reload).
func (d *Debouncer) SetAvoidLayout(id LayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.avoid = id
}

func (d *Debouncer) AvoidLayout() LayoutID {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.avoid
}

// Prime seeds the last observed layout before the subscription starts, so
// the first notification after startup compares against real state.
func (d *Debouncer) Prime(id LayoutID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.last = id
	d.hasLast = true
}

// HandleEvent runs one event through the suppression state machine.
func (d *Debouncer) HandleEvent(ev Event) {
	// Notifications for unfocused sessions are not ours to act on. A
	// failed focus query also lands here: never fire blind.
	if !d.focus.IsHostFocused() {
		d.log.Debugw("ignoring event, host not focused", "source", ev.Source)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !ev.HasLayout {
		// Echo-only delivery. The echoing transport marks the reset's
		// echo with a pending skip; consume it. Everything else is a
		// plain discard.
		if d.policy == PolicyEchoing && d.skipNext {
			d.skipNext = false
			d.record(ev, DecisionSuppressedEcho)
		}
		return
	}

	switch d.policy {
	case PolicyEchoFree:
		d.handleEchoFree(ev)
	case PolicyEchoing:
		d.handleEchoing(ev)
	}
}

func (d *Debouncer) handleEchoFree(ev Event) {
	d.last = ev.Layout
	d.hasLast = true

	decision := DecisionToggle
	if ev.Layout == d.avoid {
		decision = DecisionResetAndToggle
		d.fireReset()
	}
	d.fireToggle()
	d.record(ev, decision)
}

func (d *Debouncer) handleEchoing(ev Event) {
	if d.skipNext || (d.hasLast && ev.Layout == d.last) {
		decision := DecisionSuppressedDuplicate
		if d.skipNext {
			decision = DecisionSuppressedEcho
		}
		d.skipNext = false
		d.last = ev.Layout
		d.hasLast = true
		d.record(ev, decision)
		return
	}

	// Bookkeeping first: the notification was genuinely observed even if
	// the corrective actions fail.
	d.last = ev.Layout
	d.hasLast = true
	d.skipNext = true

	d.fireReset()
	d.fireToggle()
	d.record(ev, DecisionResetAndToggle)
}

func (d *Debouncer) fireReset() {
	if err := d.reset.Reset(); err != nil {
		d.log.Warnw("layout reset failed", "error", err)
	}
}

func (d *Debouncer) fireToggle() {
	if err := d.toggle.Toggle(); err != nil {
		d.log.Warnw("input method toggle failed", "error", err)
	}
}

func (d *Debouncer) record(ev Event, decision Decision) {
	d.log.Debugw("event handled",
		"source", ev.Source,
		"layout", ev.Layout,
		"decision", decision,
	)
	if d.journal == nil {
		return
	}
	if err := d.journal.Record(ev, decision); err != nil {
		d.log.Warnw("journal record failed", "error", err)
	}
}
