package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// apiKeyVars are checked in order
var apiKeyVars = []string{"GEMINI_API_KEY", "API_KEY"}

// LoadEnvFiles loads .env style files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadEnvFiles(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// APIKeyFromEnv returns the first non-empty prediction API key variable
func APIKeyFromEnv() string {
	for _, name := range apiKeyVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}
