package portal

import (
	"strconv"

	"github.com/godbus/dbus/v5"

	"imbridge/pkg/imbridge"
)

// The two recognized signal signatures. The legacy indicator predates the
// settings portal and reports the current layout as a slot ordinal inside
// its actions description; the portal reports most-recently-used input
// sources as (transport, id) pairs.
const (
	legacyService   = "com.canonical.indicator.keyboard"
	legacyPath      = dbus.ObjectPath("/com/canonical/indicator/keyboard")
	legacyInterface = "com.canonical.indicator.keyboard"
	legacyMember    = "Changed"

	portalService   = "org.freedesktop.portal.Desktop"
	portalPath      = dbus.ObjectPath("/org/freedesktop/portal/desktop")
	portalInterface = "org.freedesktop.impl.portal.Settings"
	portalMember    = "SettingChanged"

	inputSourcesGroup = "org.gnome.desktop.input-sources"
	mruSourcesKey     = "mru-sources"
)

// DecodeSignal maps a raw bus signal onto a layout event. The second return
// is false for signals that are not layout changes at all (wrong member,
// wrong group/setting, unusable body); those never reach the debouncer.
func DecodeSignal(sig *dbus.Signal) (imbridge.Event, bool) {
	switch sig.Name {
	case legacyInterface + "." + legacyMember:
		return decodeLegacy(sig.Body), true
	case portalInterface + "." + portalMember:
		return decodePortal(sig.Body)
	}
	return imbridge.Event{}, false
}

// decodeLegacy digs the "current" ordinal out of the indicator's actions
// description. The indicator emits Changed in pairs, the second one without
// a payload; that decodes to an event with no layout.
func decodeLegacy(body []interface{}) imbridge.Event {
	ev := imbridge.Event{Source: imbridge.SourceLegacy}

	for _, arg := range body {
		m, ok := asVariantMap(arg)
		if !ok {
			continue
		}
		v, ok := m["current"]
		if !ok {
			continue
		}
		if ord, ok := asOrdinal(v.Value()); ok {
			ev.Layout = imbridge.LayoutID(strconv.Itoa(ord))
			ev.HasLayout = true
			return ev
		}
	}

	return ev
}

// decodePortal handles SettingChanged(group, setting, value) and keeps only
// the input-sources MRU list. The most recent layout is the second element
// of the first inner pair.
func decodePortal(body []interface{}) (imbridge.Event, bool) {
	if len(body) < 3 {
		return imbridge.Event{}, false
	}

	group, ok := body[0].(string)
	if !ok || group != inputSourcesGroup {
		return imbridge.Event{}, false
	}
	setting, ok := body[1].(string)
	if !ok || setting != mruSourcesKey {
		return imbridge.Event{}, false
	}

	ev := imbridge.Event{Source: imbridge.SourcePortal}
	if id, ok := layoutFromValue(body[2]); ok {
		ev.Layout = id
		ev.HasLayout = true
	}
	return ev, true
}

// layoutFromValue extracts the most recent LayoutID from an mru-sources
// value, unwrapping variants and tolerating the different shapes the dbus
// library decodes a(ss) into.
func layoutFromValue(value interface{}) (imbridge.LayoutID, bool) {
	if v, ok := value.(dbus.Variant); ok {
		value = v.Value()
	}

	switch pairs := value.(type) {
	case [][]string:
		if len(pairs) > 0 && len(pairs[0]) >= 2 {
			return imbridge.LayoutID(pairs[0][1]), true
		}
	case []interface{}:
		if len(pairs) == 0 {
			return "", false
		}
		return layoutFromPair(pairs[0])
	}

	return "", false
}

func layoutFromPair(pair interface{}) (imbridge.LayoutID, bool) {
	if v, ok := pair.(dbus.Variant); ok {
		pair = v.Value()
	}

	switch p := pair.(type) {
	case []string:
		if len(p) >= 2 {
			return imbridge.LayoutID(p[1]), true
		}
	case []interface{}:
		if len(p) >= 2 {
			id := p[1]
			if v, ok := id.(dbus.Variant); ok {
				id = v.Value()
			}
			if s, ok := id.(string); ok {
				return imbridge.LayoutID(s), true
			}
		}
	}

	return "", false
}

func asVariantMap(arg interface{}) (map[string]dbus.Variant, bool) {
	switch m := arg.(type) {
	case map[string]dbus.Variant:
		return m, true
	case map[string]interface{}:
		out := make(map[string]dbus.Variant, len(m))
		for k, v := range m {
			out[k] = dbus.MakeVariant(v)
		}
		return out, true
	}
	return nil, false
}

func asOrdinal(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	case byte:
		return int(n), true
	}
	return 0, false
}
