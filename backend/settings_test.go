package backend

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFileYieldsDefaults(t *testing.T) {
	settings, err := LoadSettings(filepath.Join(t.TempDir(), "settings.yaml"))
	require.NoError(t, err)
	require.Equal(t, settingsSchemaVersion, settings.SchemaVersion)
	require.Equal(t, "http://127.0.0.1:8090", settings.Backend.BaseURL)
	require.Equal(t, "hi", settings.Metrics.Resolution)
	require.Equal(t, 60, settings.Metrics.RetentionMinutes)
}

func TestSaveAndLoadSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	in := &Settings{
		Backend: settingsBackend{BaseURL: "http://10.0.0.4:9000"},
		Metrics: settingsMetrics{Resolution: "lo", RetentionMinutes: 30},
	}
	require.NoError(t, SaveSettings(path, in))

	out, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.4:9000", out.Backend.BaseURL)
	require.Equal(t, "lo", out.Metrics.Resolution)
	require.Equal(t, 30, out.Metrics.RetentionMinutes)
	require.Equal(t, settingsSchemaVersion, out.SchemaVersion)
}

func TestLoadSettingsNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend:\n  baseURL: http://10.0.0.4:9000\n"), 0o644))

	settings, err := LoadSettings(path)
	require.NoError(t, err)
	require.Equal(t, "http://10.0.0.4:9000", settings.Backend.BaseURL)
	require.Equal(t, "hi", settings.Metrics.Resolution)
	require.Equal(t, 60, settings.Metrics.RetentionMinutes)
}

func TestLoadSettingsMalformedFileFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [not a map"), 0o644))

	_, err := LoadSettings(path)
	require.Error(t, err)
}

func TestSettingsWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, SaveSettings(path, defaultSettings()))

	reloaded := make(chan *Settings, 4)
	watcher, err := newSettingsWatcher(path, NewLogger(16), func(s *Settings) {
		reloaded <- s
	})
	require.NoError(t, err)
	defer watcher.Stop()

	updated := defaultSettings()
	updated.Backend.BaseURL = "http://10.0.0.4:9000"
	require.NoError(t, SaveSettings(path, updated))

	select {
	case s := <-reloaded:
		require.Equal(t, "http://10.0.0.4:9000", s.Backend.BaseURL)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for settings reload")
	}
}

func TestSettingsWatcherIgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	require.NoError(t, SaveSettings(path, defaultSettings()))

	reloaded := make(chan *Settings, 4)
	watcher, err := newSettingsWatcher(path, NewLogger(16), func(s *Settings) {
		reloaded <- s
	})
	require.NoError(t, err)
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-reloaded:
		t.Fatal("sibling file write must not trigger a reload")
	case <-time.After(time.Second):
	}
}
