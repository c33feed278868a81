package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Ning0612/cptrash/internal/domain"
)

// EnvPrefix prefixes every environment variable cptrash reads
const EnvPrefix = "CPTRASH"

// legacyEnv 舊版工具使用的環境變數，優先順序低於 CPTRASH_*
var legacyEnv = map[string]string{
	"url":          "CPANEL_URL",
	"username":     "CPANEL_USERNAME",
	"password":     "CPANEL_PASSWORD",
	"headless":     "HEADLESS",
	"timeout":      "TIMEOUT",
	"browser_path": "BROWSER_PATH",
}

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"./configs",
	}

	// Add user config directory
	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "cptrash"))
	}

	// Add home directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "cptrash"))
	}

	return paths
}

// DefaultDataDir returns where history and locks are stored
func DefaultDataDir() string {
	if configDir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(configDir, "cptrash")
	}
	return ".cptrash"
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	v.SetDefault("url", "")
	v.SetDefault("username", "")
	v.SetDefault("password", "")
	v.SetDefault("trash_path", "")
	v.SetDefault("dry_run", false)
	v.SetDefault("headless", false)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("browser_path", "")
	v.SetDefault("theme", "jupiter")
	v.SetDefault("max_depth", 64)
	v.SetDefault("data_dir", DefaultDataDir())
	v.SetDefault("every", time.Duration(0))
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.compress", false)
}

// BindEnv maps CPTRASH_* variables and the legacy names onto v
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(key)
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}
	return nil
}

// Load resolves the configuration from v. Flags must already be bound by
// the caller; precedence is flags > env > config file > defaults.
// An empty path searches DefaultConfigPaths and tolerates a missing file.
func Load(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)
	if err := BindEnv(v); err != nil {
		return nil, err
	}

	if path != "" {
		// Use specific file
		v.SetConfigFile(ExpandPath(path))
	} else {
		// Search default paths
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case path == "" && errors.As(err, &notFound):
			// 沒有設定檔時只用 flags/env/defaults
		case path != "" && os.IsNotExist(err):
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		default:
			return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
		}
	}

	return decode(v)
}

// LoadFromString parses configuration from a YAML string on top of the defaults
func LoadFromString(yamlContent string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	timeoutMilliseconds(v)

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.DataDir = ExpandPath(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// timeoutMilliseconds reads a bare number in timeout as milliseconds, so
// TIMEOUT=30000 keeps meaning 30 seconds. Other duration keys need a unit.
func timeoutMilliseconds(v *viper.Viper) {
	var ms int64
	switch value := v.Get("timeout").(type) {
	case int:
		ms = int64(value)
	case int64:
		ms = value
	case float64:
		v.Set("timeout", time.Duration(value*float64(time.Millisecond)))
		return
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return
		}
		ms = n
	default:
		return
	}
	v.Set("timeout", time.Duration(ms)*time.Millisecond)
}
