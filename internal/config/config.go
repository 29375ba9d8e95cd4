package config

import "time"

// Config holds the application configuration
type Config struct {
	Port         int
	DataDir      string
	// SettingsPath is the settings.toml read and written by the server
	SettingsPath string
	HistoryDir   string
	ReportsDir   string
	DBPath       string
	Version      string
	SampleSize   int
	RunTimeout   time.Duration
	Prediction   PredictionConfig
	DefaultGame  string
}

// PredictionConfig configures the external prediction service client.
// The API key is resolved once at startup and passed in here.
type PredictionConfig struct {
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	RequestTimeout    time.Duration
	RequestsPerMinute int
	// Language of the prompt and analysis summary, "zh" or "en"
	Language          string
}

// DefaultPredictionConfig returns the client defaults
func DefaultPredictionConfig() PredictionConfig {
	return PredictionConfig{
		BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
		Model:             "gemini-3-flash-preview",
		Temperature:       0.1,
		RequestTimeout:    90 * time.Second,
		RequestsPerMinute: 10,
		Language:          "zh",
	}
}
