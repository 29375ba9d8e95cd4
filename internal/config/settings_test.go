package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	s, err := LoadSettingsFrom(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSaveAndLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")

	in := DefaultSettings()
	in.HistoryPackPath = "/tmp/pack"
	in.DefaultGame = "dlt"
	in.Prediction.Model = "gemini-test"
	in.Prediction.TimeoutSeconds = 30

	require.NoError(t, SaveSettingsTo(path, in))

	out, err := LoadSettingsFrom(path)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestLoadSettingsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("default_game = [unclosed"), 0o644))

	s, err := LoadSettingsFrom(path)
	assert.Error(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestSettingsUseHomeOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("LOTTERY_ANALYST_HOME", dir)

	path, err := SettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "settings.toml"), path)

	s := DefaultSettings()
	s.LogLevel = "debug"
	require.NoError(t, SaveSettings(s))

	loaded, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, "debug", loaded.LogLevel)
}

func TestPredictionSettingsApplyTo(t *testing.T) {
	cfg := DefaultPredictionConfig()
	PredictionSettings{}.ApplyTo(&cfg)
	assert.Equal(t, DefaultPredictionConfig(), cfg)

	PredictionSettings{
		Model:             "other",
		Temperature:       0.5,
		TimeoutSeconds:    5,
		RequestsPerMinute: 2,
		Language:          "en",
	}.ApplyTo(&cfg)
	assert.Equal(t, "other", cfg.Model)
	assert.Equal(t, 0.5, cfg.Temperature)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2, cfg.RequestsPerMinute)
	assert.Equal(t, "en", cfg.Language)
}

func TestAPIKeyFromEnv(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("API_KEY", "")
	assert.Empty(t, APIKeyFromEnv())

	t.Setenv("API_KEY", "fallback")
	assert.Equal(t, "fallback", APIKeyFromEnv())

	t.Setenv("GEMINI_API_KEY", " primary ")
	assert.Equal(t, "primary", APIKeyFromEnv())
}

func TestLoadEnvFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOTTERY_TEST_VAR=from-file\n"), 0o644))
	t.Setenv("LOTTERY_TEST_VAR", "")
	os.Unsetenv("LOTTERY_TEST_VAR")

	require.NoError(t, LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("LOTTERY_TEST_VAR"))
}
