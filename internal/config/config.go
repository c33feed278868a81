package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/logger"
)

// MinEvery is the shortest repeat interval; each sweep launches a browser
const MinEvery = time.Minute

// Config represents the complete configuration for cptrash
type Config struct {
	// URL is the cPanel login address, e.g. https://example.com:2083
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// TrashPath defaults to /home/<username>/.trash
	TrashPath string `mapstructure:"trash_path"`

	DryRun   bool          `mapstructure:"dry_run"`
	Headless bool          `mapstructure:"headless"`
	Timeout  time.Duration `mapstructure:"timeout"`

	BrowserPath string `mapstructure:"browser_path"`
	Theme       string `mapstructure:"theme"`

	// MaxDepth bounds the folder depth entered below the trash root; 0 = unlimited
	MaxDepth int `mapstructure:"max_depth"`

	// DataDir holds run history and lock files
	DataDir string `mapstructure:"data_dir"`

	// Every repeats the sweep at this interval; 0 runs once
	Every time.Duration `mapstructure:"every"`

	Log LogConfig `mapstructure:"log"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// Validate checks values that cannot be fixed by prompting
func (c *Config) Validate() error {
	if c.URL != "" {
		if err := ValidateURL(c.URL); err != nil {
			return err
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", domain.ErrConfigInvalid, c.Timeout)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth cannot be negative", domain.ErrConfigInvalid)
	}
	if c.Every < 0 {
		return fmt.Errorf("%w: every cannot be negative", domain.ErrConfigInvalid)
	}
	if c.Every > 0 && c.Every < MinEvery {
		return fmt.Errorf("%w: every must be at least %s, got %s", domain.ErrConfigInvalid, MinEvery, c.Every)
	}
	if c.TrashPath != "" && !strings.HasPrefix(c.TrashPath, "/") {
		return fmt.Errorf("%w: trash_path must be absolute: %s", domain.ErrConfigInvalid, c.TrashPath)
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log level: %s", domain.ErrConfigInvalid, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format: %s", domain.ErrConfigInvalid, c.Log.Format)
	}
	return nil
}

// Missing lists the credentials that still have to be supplied
func (c *Config) Missing() []string {
	var missing []string
	if c.URL == "" {
		missing = append(missing, "url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}

// RequireCredentials fails when any credential is still missing
func (c *Config) RequireCredentials() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfigInvalid, strings.Join(missing, ", "))
	}
	return c.Validate()
}

// Trash returns the remote trash directory
func (c *Config) Trash() string {
	if c.TrashPath != "" {
		return c.TrashPath
	}
	return domain.TrashRoot(c.Username)
}

// Mode returns the sweep mode selected by DryRun
func (c *Config) Mode() domain.Mode {
	if c.DryRun {
		return domain.ModeDryRun
	}
	return domain.ModeLive
}

// Host returns the host part of URL, used to key history and locks
func (c *Config) Host() string {
	u, err := url.Parse(c.URL)
	if err != nil || u.Host == "" {
		return c.URL
	}
	return u.Host
}

// Account identifies the swept trash as user@host
func (c *Config) Account() string {
	return c.Username + "@" + c.Host()
}

// LoggerConfig converts the log section for logger.Init
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:  logger.ParseLevel(c.Log.Level),
		Format: logger.ParseFormat(c.Log.Format),
		File: logger.FileConfig{
			Path:       ExpandPath(c.Log.File),
			MaxSizeMB:  c.Log.MaxSizeMB,
			MaxAgeDays: c.Log.MaxAgeDays,
			MaxBackups: c.Log.MaxBackups,
			Compress:   c.Log.Compress,
		},
	}
}

// ValidateURL accepts absolute http(s) URLs only
func ValidateURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: invalid cPanel URL %q (e.g. https://example.com:2083)", domain.ErrConfigInvalid, raw)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a path
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	// Expand ~ to home directory
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			if len(path) > 1 && (path[1] == '/' || path[1] == filepath.Separator) {
				path = filepath.Join(home, path[2:])
			} else if len(path) == 1 {
				path = home
			}
		}
	}
	// Expand environment variables
	path = os.ExpandEnv(path)
	return filepath.Clean(path)
}
