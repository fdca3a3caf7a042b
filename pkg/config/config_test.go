package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
avoid_layout = "ua"
policy = "echoing"
reset_mode = "shell-eval"
toggle_command = ["editorctl", "toggle-input-method"]
journal = "json"
debug = true
`), 0644))

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "ua", cfg.AvoidLayout)
	assert.Equal(t, PolicyEchoing, cfg.Policy)
	assert.Equal(t, "shell-eval", cfg.ResetMode)
	assert.Equal(t, []string{"editorctl", "toggle-input-method"}, cfg.ToggleCommand)
	assert.Equal(t, JournalJSON, cfg.Journal)
	assert.True(t, cfg.Debug)
	// Untouched keys keep their defaults.
	assert.Equal(t, Default().EvdevXMLPath, cfg.EvdevXMLPath)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`avoid_layuot = "ru"`), 0644))

	_, err := Load(path)

	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := map[string]Config{}

	c := Default()
	c.Policy = "guesswork"
	cases["policy"] = c

	c = Default()
	c.ResetMode = "carrier-pigeon"
	cases["reset_mode"] = c

	c = Default()
	c.Journal = "papyrus"
	cases["journal"] = c

	c = Default()
	c.AvoidLayout = ""
	cases["avoid_layout"] = c

	for name, cfg := range cases {
		assert.Error(t, cfg.Validate(), name)
	}
}

func TestWatchAppliesRewrittenConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`avoid_layout = "ru"`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = Watch(ctx, path, zap.NewNop().Sugar(), func(cfg Config) {
			mu.Lock()
			got = append(got, cfg.AvoidLayout)
			mu.Unlock()
		})
	}()

	// Give the watcher a moment to install before rewriting.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`avoid_layout = "ua"`), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0 && got[len(got)-1] == "ua"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	<-done
}

func TestWatchIgnoresBrokenRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`avoid_layout = "ru"`), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applied := make(chan Config, 1)
	go func() {
		_ = Watch(ctx, path, zap.NewNop().Sugar(), func(cfg Config) {
			applied <- cfg
		})
	}()

	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(`policy = "broken`), 0644))

	select {
	case cfg := <-applied:
		t.Fatalf("broken config should not be applied, got %+v", cfg)
	case <-time.After(300 * time.Millisecond):
	}
}
