package reset

import (
	"errors"
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCaller struct {
	dest string
	path dbus.ObjectPath
	obj  *fakeBusObject
}

func (c *fakeCaller) Object(dest string, path dbus.ObjectPath) dbus.BusObject {
	c.dest = dest
	c.path = path
	return c.obj
}

type fakeBusObject struct {
	dbus.BusObject
	method string
	flags  dbus.Flags
	args   []interface{}
	err    error
}

func (o *fakeBusObject) Go(method string, flags dbus.Flags, _ chan *dbus.Call, args ...interface{}) *dbus.Call {
	o.method = method
	o.flags = flags
	o.args = args
	return &dbus.Call{Err: o.err}
}

func TestSettingsDaemonResetsFirstSource(t *testing.T) {
	c := &fakeCaller{obj: &fakeBusObject{}}
	r := NewSettingsDaemon(c, zap.NewNop().Sugar())

	require.NoError(t, r.Reset())

	assert.Equal(t, keyboardService, c.dest)
	assert.Equal(t, keyboardPath, c.path)
	assert.Equal(t, keyboardMethod, c.obj.method)
	assert.Equal(t, dbus.FlagNoReplyExpected, c.obj.flags)
	assert.Equal(t, []interface{}{uint32(0)}, c.obj.args)
}

func TestSettingsDaemonReportsDispatchError(t *testing.T) {
	c := &fakeCaller{obj: &fakeBusObject{err: errors.New("disconnected")}}
	r := NewSettingsDaemon(c, zap.NewNop().Sugar())

	assert.Error(t, r.Reset())
}

func TestShellEvalActivatesFirstSource(t *testing.T) {
	c := &fakeCaller{obj: &fakeBusObject{}}
	r := NewShellEval(c, zap.NewNop().Sugar())

	require.NoError(t, r.Reset())

	assert.Equal(t, shellService, c.dest)
	assert.Equal(t, shellMethod, c.obj.method)
	assert.Equal(t, []interface{}{activateFirstSource}, c.obj.args)
}

func TestGSettingsStartErrorIsReturned(t *testing.T) {
	g := NewGSettings(zap.NewNop().Sugar())
	g.Path = "/nonexistent/gsettings"

	assert.Error(t, g.Reset())
}

func TestGSettingsLaunchesWithoutBlocking(t *testing.T) {
	g := NewGSettings(zap.NewNop().Sugar())
	g.Path = "true"

	assert.NoError(t, g.Reset())
}

func TestCommandTogglerRuns(t *testing.T) {
	tog, err := NewCommandToggler([]string{"true"}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.NoError(t, tog.Toggle())
}

func TestCommandTogglerReportsFailure(t *testing.T) {
	tog, err := NewCommandToggler([]string{"false"}, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Error(t, tog.Toggle())
}

func TestCommandTogglerRequiresArgv(t *testing.T) {
	_, err := NewCommandToggler(nil, zap.NewNop().Sugar())

	assert.ErrorIs(t, err, ErrNoToggleCommand)
}

func TestNewRejectsUnknownMode(t *testing.T) {
	_, err := New("telepathy", zap.NewNop().Sugar())

	assert.Error(t, err)
}

func TestNopTogglerAlwaysSucceeds(t *testing.T) {
	assert.NoError(t, NewNopToggler(zap.NewNop().Sugar()).Toggle())
}
