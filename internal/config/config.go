// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"

	"github.com/j-veylop/token-monitor-tui/internal/models"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath         string
	CcusagePath          string
	NodePath             string
	ClaudeDataDir        string
	RefreshInterval      time.Duration
	DefaultPeriod        models.Period
	AdaptiveWarnings     bool
	DesktopNotifications bool
	Locale               language.Tag
	LogPath              string
	LogLevel             string
	LogPretty            bool
}

// Default values
const (
	defaultRefreshInterval = 60 * time.Second
	defaultLocale          = "en"
	defaultLogLevel        = "info"
	appDirName             = "ctm"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	period, err := models.ParsePeriod(getEnvString("DEFAULT_PERIOD", string(models.PeriodDay)))
	if err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_PERIOD: %w", err)
	}

	locale, err := language.Parse(getEnvString("LOCALE", defaultLocale))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCALE: %w", err)
	}

	cfg := &Config{
		DatabasePath:         getEnvString("DATABASE_PATH", defaultAppPath("usage.db")),
		CcusagePath:          os.Getenv("CCUSAGE_PATH"),
		NodePath:             os.Getenv("NODE_PATH"),
		ClaudeDataDir:        getEnvString("CLAUDE_DATA_DIR", getDefaultClaudeDataDir()),
		RefreshInterval:      getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		DefaultPeriod:        period,
		AdaptiveWarnings:     getEnvBool("ADAPTIVE_WARNINGS", true),
		DesktopNotifications: getEnvBool("DESKTOP_NOTIFICATIONS", true),
		Locale:               locale,
		LogPath:              getEnvString("LOG_PATH", defaultAppPath("ctm.log")),
		LogLevel:             strings.ToLower(getEnvString("LOG_LEVEL", defaultLogLevel)),
		LogPretty:            strings.EqualFold(os.Getenv("LOG_FORMAT"), "pretty"),
	}

	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = defaultRefreshInterval
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure log directory exists
	if err := ensureDir(filepath.Dir(cfg.LogPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", appDirName, ".env"),
			filepath.Join(home, ".claude", ".env"),
		)
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultAppPath returns name inside the application config directory.
func defaultAppPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getDefaultClaudeDataDir returns where Claude Code writes session transcripts.
func getDefaultClaudeDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".claude", "projects")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
// Accepts anything strconv.ParseBool does, plus yes/no and on/off.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "yes", "on":
		return true
	case "no", "off":
		return false
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
