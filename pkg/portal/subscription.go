package portal

import (
	"context"
	"sync"

	"github.com/godbus/dbus/v5"
	"go.uber.org/zap"

	"imbridge/pkg/imbridge"
)

// Handler receives decoded layout events, one at a time.
type Handler func(imbridge.Event)

// busConn is the slice of *dbus.Conn the subscription needs, split out so
// tests can run against a fake bus.
type busConn interface {
	AddMatchSignal(...dbus.MatchOption) error
	RemoveMatchSignal(...dbus.MatchOption) error
	Signal(chan<- *dbus.Signal)
	RemoveSignal(chan<- *dbus.Signal)
	Object(string, dbus.ObjectPath) dbus.BusObject
	Close() error
}

const signalBuffer = 32

// Subscription owns the process's one live registration with the session
// bus. Registration is idempotent and teardown is bound to the context
// passed to Register, so host shutdown always unregisters.
type Subscription struct {
	handler Handler
	log     *zap.SugaredLogger

	// Primer, when set, receives the current layout read synchronously
	// from the portal before signals start flowing.
	Primer func(imbridge.LayoutID)

	connect func() (busConn, error)

	mu      sync.Mutex
	conn    busConn
	signals chan *dbus.Signal
	done    chan struct{}
}

func NewSubscription(handler Handler, log *zap.SugaredLogger) *Subscription {
	return &Subscription{
		handler: handler,
		log:     log,
		connect: func() (busConn, error) {
			return Connect()
		},
	}
}

// Register subscribes to both layout-change signatures with eavesdrop
// delivery. Calling it while a subscription is live is a no-op. The
// subscription is torn down when ctx is cancelled.
func (s *Subscription) Register(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		s.log.Debug("subscription already registered")
		return nil
	}

	conn, err := s.connect()
	if err != nil {
		return err
	}

	// Eavesdrop: the indicator and the portal broadcast to their own
	// consumers, not to us.
	portalMatch := []dbus.MatchOption{
		dbus.WithMatchInterface(portalInterface),
		dbus.WithMatchMember(portalMember),
		dbus.WithMatchOption("eavesdrop", "true"),
	}
	if err := conn.AddMatchSignal(portalMatch...); err != nil {
		conn.Close()
		return err
	}

	// The legacy path only matters where the indicator actually runs;
	// probe it and skip the match rule when it is gone.
	if pingLegacy(conn) {
		legacyMatch := []dbus.MatchOption{
			dbus.WithMatchInterface(legacyInterface),
			dbus.WithMatchMember(legacyMember),
			dbus.WithMatchOption("eavesdrop", "true"),
		}
		if err := conn.AddMatchSignal(legacyMatch...); err != nil {
			s.log.Warnw("legacy signal match failed", "error", err)
		}
	} else {
		s.log.Infow("legacy keyboard indicator not reachable, portal only")
	}

	if s.Primer != nil {
		if id, ok := readCurrentLayout(conn); ok {
			s.Primer(id)
		}
	}

	signals := make(chan *dbus.Signal, signalBuffer)
	conn.Signal(signals)

	s.conn = conn
	s.signals = signals
	s.done = make(chan struct{})

	go s.pump(signals, s.done)
	go func() {
		<-ctx.Done()
		s.Unregister()
	}()

	s.log.Info("subscribed to layout change notifications")
	return nil
}

// pump is the single consumer: events are decoded and handled to completion
// one at a time, which is what keeps the debouncer's state machine serial.
func (s *Subscription) pump(signals <-chan *dbus.Signal, done chan<- struct{}) {
	defer close(done)
	for sig := range signals {
		ev, ok := DecodeSignal(sig)
		if !ok {
			continue
		}
		s.handler(ev)
	}
}

// Unregister releases the subscription. Safe to call repeatedly and when
// nothing is registered.
func (s *Subscription) Unregister() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil {
		return
	}

	s.conn.RemoveSignal(s.signals)
	close(s.signals)
	if err := s.conn.Close(); err != nil {
		s.log.Warnw("close bus connection", "error", err)
	}

	s.conn = nil
	s.signals = nil
	s.log.Info("unsubscribed from layout change notifications")
}

// Active reports whether a subscription is currently live.
func (s *Subscription) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func pingLegacy(conn busConn) bool {
	obj := conn.Object(legacyService, legacyPath)
	return obj.Call("org.freedesktop.DBus.Peer.Ping", 0).Err == nil
}

// readCurrentLayout primes suppression state by asking the portal for the
// MRU list before subscribing.
func readCurrentLayout(conn busConn) (imbridge.LayoutID, bool) {
	obj := conn.Object(portalService, portalPath)

	var value dbus.Variant
	call := obj.Call("org.freedesktop.portal.Settings.ReadOne", 0, inputSourcesGroup, mruSourcesKey)
	if call.Err != nil {
		return "", false
	}
	if err := call.Store(&value); err != nil {
		return "", false
	}

	return layoutFromValue(value)
}
