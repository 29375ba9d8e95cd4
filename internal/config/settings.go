package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	appDirName       = "lottery-analyst"
	settingsFileName = "settings.toml"
)

// Settings are the user preferences persisted between runs
type Settings struct {
	// HistoryPackPath is the extracted history pack in use, if any
	HistoryPackPath string `toml:"history_pack_path"`
	DefaultGame     string `toml:"default_game"`
	LogLevel        string `toml:"log_level"`
	SampleSize      int    `toml:"sample_size"`

	Prediction PredictionSettings `toml:"prediction"`
}

// PredictionSettings override the prediction client defaults
type PredictionSettings struct {
	Model             string  `toml:"model"`
	BaseURL           string  `toml:"base_url"`
	Temperature       float64 `toml:"temperature"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerMinute int     `toml:"requests_per_minute"`
	Language          string  `toml:"language"`
}

// DefaultSettings returns the settings used when no file exists
func DefaultSettings() *Settings {
	return &Settings{
		DefaultGame: "ssq",
		LogLevel:    "info",
		SampleSize:  50,
	}
}

// DataStoreDir returns the per-user directory for application data
func DataStoreDir() (string, error) {
	if dir := os.Getenv("LOTTERY_ANALYST_HOME"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// SettingsPath returns the location of settings.toml
func SettingsPath() (string, error) {
	dir, err := DataStoreDir()
	if err != nil {
		return "", err
	}
	return SettingsPathIn(dir), nil
}

// SettingsPathIn returns the location of settings.toml inside a data directory
func SettingsPathIn(dir string) string {
	return filepath.Join(dir, settingsFileName)
}

// LoadSettings reads settings.toml, returning defaults if it does not exist
func LoadSettings() (*Settings, error) {
	path, err := SettingsPath()
	if err != nil {
		return DefaultSettings(), err
	}
	return LoadSettingsFrom(path)
}

// LoadSettingsFrom reads settings from an explicit path
func LoadSettingsFrom(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings: %w", err)
	}

	if err := toml.Unmarshal(data, settings); err != nil {
		return DefaultSettings(), fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return settings, nil
}

// SaveSettings writes settings.toml
func SaveSettings(settings *Settings) error {
	path, err := SettingsPath()
	if err != nil {
		return err
	}
	return SaveSettingsTo(path, settings)
}

// SaveSettingsTo writes settings to an explicit path
func SaveSettingsTo(path string, settings *Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ApplyTo overlays the non-zero settings onto a prediction config
func (p PredictionSettings) ApplyTo(cfg *PredictionConfig) {
	if p.Model != "" {
		cfg.Model = p.Model
	}
	if p.BaseURL != "" {
		cfg.BaseURL = p.BaseURL
	}
	if p.Temperature > 0 {
		cfg.Temperature = p.Temperature
	}
	if p.TimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(p.TimeoutSeconds) * time.Second
	}
	if p.RequestsPerMinute > 0 {
		cfg.RequestsPerMinute = p.RequestsPerMinute
	}
	if p.Language != "" {
		cfg.Language = p.Language
	}
}
