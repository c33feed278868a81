package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Ning0612/cptrash/internal/domain"
	"github.com/Ning0612/cptrash/internal/testutil"
)

func TestLoadFromString_Defaults(t *testing.T) {
	cfg, err := LoadFromString("url: https://example.com:2083\nusername: alice\n")
	if err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected default timeout 30s, got %s", cfg.Timeout)
	}
	if cfg.MaxDepth != 64 {
		t.Errorf("Expected default max depth 64, got %d", cfg.MaxDepth)
	}
	if cfg.Theme != "jupiter" {
		t.Errorf("Expected default theme jupiter, got %s", cfg.Theme)
	}
	if cfg.Trash() != "/home/alice/.trash" {
		t.Errorf("Unexpected trash path: %s", cfg.Trash())
	}
	if cfg.Mode() != domain.ModeLive {
		t.Errorf("Expected live mode by default")
	}
}

func TestLoadFromString_Timeout(t *testing.T) {
	tests := []struct {
		yaml     string
		expected time.Duration
	}{
		{"timeout: 45000", 45 * time.Second},
		{"timeout: 2m", 2 * time.Minute},
		{`timeout: "1500"`, 1500 * time.Millisecond},
	}

	for _, tt := range tests {
		cfg, err := LoadFromString(tt.yaml)
		if err != nil {
			t.Errorf("%q: LoadFromString failed: %v", tt.yaml, err)
			continue
		}
		if cfg.Timeout != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.yaml, tt.expected, cfg.Timeout)
		}
	}
}

func TestLoadFromString_Every(t *testing.T) {
	tests := []struct {
		yaml     string
		expected time.Duration
		wantErr  bool
	}{
		{"every: 1h", time.Hour, false},
		{"every: 0", 0, false},
		{"every: 60", 0, true},
		{`every: "60"`, 0, true},
		{"every: 30s", 0, true},
	}

	for _, tt := range tests {
		cfg, err := LoadFromString(tt.yaml)
		if tt.wantErr {
			if !errors.Is(err, domain.ErrConfigInvalid) {
				t.Errorf("%q: expected ErrConfigInvalid, got %v", tt.yaml, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: LoadFromString failed: %v", tt.yaml, err)
			continue
		}
		if cfg.Every != tt.expected {
			t.Errorf("%q: expected %s, got %s", tt.yaml, tt.expected, cfg.Every)
		}
	}
}

func TestLoad_EveryEnvNeedsUnit(t *testing.T) {
	t.Setenv("CPTRASH_EVERY", "60")
	t.Setenv("TIMEOUT", "60")

	_, err := Load(viper.New(), "")
	if !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("Expected a bare every to be rejected, got %v", err)
	}
}

func TestLoadFromString_Full(t *testing.T) {
	yaml := `
url: https://host.example.com:2083
username: bob
password: hunter2
trash_path: /home/bob/custom-trash
dry_run: true
headless: true
max_depth: 0
every: 24h
log:
  level: debug
  format: json
  file: /tmp/cptrash.log
  max_backups: 7
`
	cfg, err := LoadFromString(yaml)
	if err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	if !cfg.DryRun || cfg.Mode() != domain.ModeDryRun {
		t.Error("Expected dry run mode")
	}
	if !cfg.Headless {
		t.Error("Expected headless")
	}
	if cfg.Trash() != "/home/bob/custom-trash" {
		t.Errorf("Unexpected trash path: %s", cfg.Trash())
	}
	if cfg.Every != 24*time.Hour {
		t.Errorf("Expected every 24h, got %s", cfg.Every)
	}
	if cfg.Account() != "bob@host.example.com:2083" {
		t.Errorf("Unexpected account: %s", cfg.Account())
	}
	lc := cfg.LoggerConfig()
	if lc.File.Path != "/tmp/cptrash.log" || lc.File.MaxBackups != 7 {
		t.Errorf("Unexpected logger file config: %+v", lc.File)
	}
	if len(cfg.Missing()) != 0 {
		t.Errorf("Expected no missing credentials, got %v", cfg.Missing())
	}
}

func TestLoadFromString_Invalid(t *testing.T) {
	tests := []string{
		"url: [not, a, string",
		"url: ftp://example.com",
		"max_depth: -1",
		"timeout: 0",
		"trash_path: relative/.trash",
		"log:\n  level: loud",
		"log:\n  format: xml",
	}

	for _, yaml := range tests {
		if _, err := LoadFromString(yaml); !errors.Is(err, domain.ErrConfigInvalid) {
			t.Errorf("%q: expected ErrConfigInvalid, got %v", yaml, err)
		}
	}
}

func TestMissingAndRequireCredentials(t *testing.T) {
	cfg, err := LoadFromString("username: alice")
	if err != nil {
		t.Fatalf("LoadFromString failed: %v", err)
	}

	missing := cfg.Missing()
	if len(missing) != 2 || missing[0] != "url" || missing[1] != "password" {
		t.Errorf("Unexpected missing list: %v", missing)
	}
	if err := cfg.RequireCredentials(); !errors.Is(err, domain.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Setenv("CPANEL_URL", "https://legacy.example.com:2083")
	t.Setenv("CPANEL_USERNAME", "legacy")
	t.Setenv("TIMEOUT", "5000")
	t.Setenv("HEADLESS", "true")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.URL != "https://legacy.example.com:2083" || cfg.Username != "legacy" {
		t.Errorf("Expected legacy env values, got %s / %s", cfg.URL, cfg.Username)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected 5s timeout, got %s", cfg.Timeout)
	}
	if !cfg.Headless {
		t.Error("Expected headless from HEADLESS=true")
	}
}

func TestLoad_PrefixedEnvWins(t *testing.T) {
	t.Setenv("CPANEL_URL", "https://legacy.example.com:2083")
	t.Setenv("CPTRASH_URL", "https://new.example.com:2083")
	t.Setenv("CPTRASH_MAX_DEPTH", "3")

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.URL != "https://new.example.com:2083" {
		t.Errorf("Expected CPTRASH_URL to win, got %s", cfg.URL)
	}
	if cfg.MaxDepth != 3 {
		t.Errorf("Expected max depth 3, got %d", cfg.MaxDepth)
	}
}

func TestLoad_Precedence(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	path := filepath.Join(dir, "config.yaml")
	content := "url: https://file.example.com:2083\nusername: fromfile\nbrowser_path: /opt/chrome\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("CPANEL_USERNAME", "fromenv")
	t.Setenv("CPANEL_URL", "https://env.example.com:2083")

	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().String("url", "", "")
	if err := cmd.Flags().Set("url", "https://flag.example.com:2083"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	v := viper.New()
	if err := v.BindPFlag("url", cmd.Flags().Lookup("url")); err != nil {
		t.Fatalf("BindPFlag failed: %v", err)
	}

	cfg, err := Load(v, path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.URL != "https://flag.example.com:2083" {
		t.Errorf("Expected flag to win, got %s", cfg.URL)
	}
	if cfg.Username != "fromenv" {
		t.Errorf("Expected env to beat file, got %s", cfg.Username)
	}
	if cfg.BrowserPath != "/opt/chrome" {
		t.Errorf("Expected file value, got %s", cfg.BrowserPath)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir, cleanup := testutil.TempDir(t)
	defer cleanup()

	_, err := Load(viper.New(), filepath.Join(dir, "nope.yaml"))
	if !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("Expected ErrConfigNotFound, got %v", err)
	}
}

func TestValidateURL(t *testing.T) {
	valid := []string{"https://example.com:2083", "http://10.0.0.1:2082/"}
	for _, u := range valid {
		if err := ValidateURL(u); err != nil {
			t.Errorf("Expected %s to be valid: %v", u, err)
		}
	}

	invalid := []string{"", "example.com", "://", "ftp://example.com"}
	for _, u := range invalid {
		if err := ValidateURL(u); err == nil {
			t.Errorf("Expected %q to be rejected", u)
		}
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	if got := ExpandPath("~/logs/cptrash.log"); got != filepath.Join(home, "logs", "cptrash.log") {
		t.Errorf("Unexpected expansion: %s", got)
	}
	if got := ExpandPath(""); got != "" {
		t.Errorf("Expected empty path to stay empty, got %q", got)
	}
}
