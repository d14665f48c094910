package backend

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sigs.k8s.io/yaml"
)

const settingsSchemaVersion = 1

// Settings captures the persisted configuration stored in settings.yaml.
type Settings struct {
	SchemaVersion int              `json:"schemaVersion"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Backend       settingsBackend  `json:"backend"`
	Metrics       settingsMetrics  `json:"metrics"`
	Overview      settingsOverview `json:"overview"`
}

type settingsBackend struct {
	// BaseURL is the dashboard API root, e.g. http://127.0.0.1:8090.
	BaseURL string `json:"baseURL"`
}

type settingsMetrics struct {
	// Resolution is "hi" or "lo".
	Resolution string `json:"resolution"`
	// RetentionMinutes bounds how much live-series history is buffered.
	RetentionMinutes int `json:"retentionMinutes"`
}

type settingsOverview struct {
	// Namespace filters the overview to one namespace when set.
	Namespace string `json:"namespace"`
}

// defaultSettings provides a fully-populated settings file with safe defaults.
func defaultSettings() *Settings {
	return &Settings{
		SchemaVersion: settingsSchemaVersion,
		UpdatedAt:     time.Now().UTC(),
		Backend:       settingsBackend{BaseURL: "http://127.0.0.1:8090"},
		Metrics:       settingsMetrics{Resolution: "hi", RetentionMinutes: 60},
	}
}

// normalizeSettings ensures required defaults are present after loading.
func normalizeSettings(settings *Settings) *Settings {
	if settings == nil {
		return defaultSettings()
	}
	if settings.SchemaVersion == 0 {
		settings.SchemaVersion = settingsSchemaVersion
	}
	if settings.Backend.BaseURL == "" {
		settings.Backend.BaseURL = "http://127.0.0.1:8090"
	}
	if settings.Metrics.Resolution == "" {
		settings.Metrics.Resolution = "hi"
	}
	if settings.Metrics.RetentionMinutes <= 0 {
		settings.Metrics.RetentionMinutes = 60
	}
	return settings
}

// DefaultSettingsPath returns the settings.yaml location under the user
// config directory.
func DefaultSettingsPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not find config directory: %w", err)
	}
	return filepath.Join(configDir, "harborview", "settings.yaml"), nil
}

// LoadSettings reads and normalizes the settings file at path. A missing
// file yields defaults without error; a malformed file is an error.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSettings(), nil
		}
		return nil, fmt.Errorf("could not read settings: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("could not parse settings: %w", err)
	}
	return normalizeSettings(&settings), nil
}

// SaveSettings writes the settings file at path, creating parent
// directories as needed.
func SaveSettings(path string, settings *Settings) error {
	settings = normalizeSettings(settings)
	settings.UpdatedAt = time.Now().UTC()

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("could not encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("could not write settings: %w", err)
	}
	return nil
}
