// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the client needs at startup.
type Config struct {
	// APIBaseURL is the root of the content automation backend.
	APIBaseURL string `envconfig:"API_BASE_URL" default:"http://localhost:8000"`

	// RequestTimeout bounds every backend call. Generation calls proxy an
	// LLM pipeline server-side, so the default is generous.
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"90s"`

	// TokenFile is where the auth token is persisted between runs.
	// Empty means <user config dir>/postpilot/token.json.
	TokenFile string `envconfig:"TOKEN_FILE"`

	// LogFile receives structured debug logs. Logging to the terminal
	// would fight the TUI for the screen.
	LogFile string `envconfig:"LOG_FILE" default:"postpilot.log"`

	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// TrendFeeds overrides the RSS presets used when the backend has no
	// trend suggestions. Comma-separated preset names or URLs.
	TrendFeeds []string `envconfig:"TREND_FEEDS"`
}

// Load reads .env (if present) and the POSTPILOT_* environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("postpilot", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if cfg.TokenFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve config dir: %w", err)
		}
		cfg.TokenFile = filepath.Join(dir, "postpilot", "token.json")
	}

	return &cfg, nil
}
