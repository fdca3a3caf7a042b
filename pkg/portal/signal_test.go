package portal

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imbridge/pkg/imbridge"
)

func portalSignal(group, setting string, value interface{}) *dbus.Signal {
	return &dbus.Signal{
		Name: portalInterface + "." + portalMember,
		Body: []interface{}{group, setting, dbus.MakeVariant(value)},
	}
}

func TestDecodePortalMRUSources(t *testing.T) {
	sig := portalSignal(inputSourcesGroup, mruSourcesKey, [][]string{
		{"xkb", "ru"},
		{"xkb", "us"},
	})

	ev, ok := DecodeSignal(sig)

	require.True(t, ok)
	assert.Equal(t, imbridge.SourcePortal, ev.Source)
	assert.True(t, ev.HasLayout)
	assert.Equal(t, imbridge.LayoutID("ru"), ev.Layout)
}

func TestDecodePortalLooselyTypedPairs(t *testing.T) {
	sig := portalSignal(inputSourcesGroup, mruSourcesKey, []interface{}{
		[]interface{}{"xkb", "ua"},
	})

	ev, ok := DecodeSignal(sig)

	require.True(t, ok)
	assert.Equal(t, imbridge.LayoutID("ua"), ev.Layout)
}

func TestDecodePortalEmptyValue(t *testing.T) {
	sig := portalSignal(inputSourcesGroup, mruSourcesKey, [][]string{})

	ev, ok := DecodeSignal(sig)

	require.True(t, ok)
	assert.False(t, ev.HasLayout)
}

func TestDecodePortalGroupMismatchDiscarded(t *testing.T) {
	sig := portalSignal("org.other", mruSourcesKey, [][]string{{"xkb", "ru"}})

	_, ok := DecodeSignal(sig)

	assert.False(t, ok)
}

func TestDecodePortalSettingMismatchDiscarded(t *testing.T) {
	sig := portalSignal(inputSourcesGroup, "sources", [][]string{{"xkb", "ru"}})

	_, ok := DecodeSignal(sig)

	assert.False(t, ok)
}

func TestDecodePortalTruncatedBody(t *testing.T) {
	sig := &dbus.Signal{
		Name: portalInterface + "." + portalMember,
		Body: []interface{}{inputSourcesGroup},
	}

	_, ok := DecodeSignal(sig)

	assert.False(t, ok)
}

func TestDecodeLegacyCurrentOrdinal(t *testing.T) {
	sig := &dbus.Signal{
		Name: legacyInterface + "." + legacyMember,
		Body: []interface{}{
			map[string]dbus.Variant{
				"current": dbus.MakeVariant(uint32(2)),
				"active":  dbus.MakeVariant(true),
			},
		},
	}

	ev, ok := DecodeSignal(sig)

	require.True(t, ok)
	assert.Equal(t, imbridge.SourceLegacy, ev.Source)
	assert.True(t, ev.HasLayout)
	assert.Equal(t, imbridge.LayoutID("2"), ev.Layout)
}

func TestDecodeLegacyEchoWithoutPayload(t *testing.T) {
	sig := &dbus.Signal{
		Name: legacyInterface + "." + legacyMember,
		Body: []interface{}{},
	}

	ev, ok := DecodeSignal(sig)

	require.True(t, ok)
	assert.False(t, ev.HasLayout)
}

func TestDecodeLegacyNonNumericCurrent(t *testing.T) {
	sig := &dbus.Signal{
		Name: legacyInterface + "." + legacyMember,
		Body: []interface{}{
			map[string]dbus.Variant{"current": dbus.MakeVariant("nope")},
		},
	}

	ev, ok := DecodeSignal(sig)

	require.True(t, ok)
	assert.False(t, ev.HasLayout)
}

func TestDecodeUnrelatedSignal(t *testing.T) {
	sig := &dbus.Signal{
		Name: "org.freedesktop.DBus.NameOwnerChanged",
		Body: []interface{}{"a", "b", "c"},
	}

	_, ok := DecodeSignal(sig)

	assert.False(t, ok)
}
