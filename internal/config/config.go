// Package config provides layered configuration loading.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the resolved configuration.
type Config struct {
	// Store settings
	BaseURL string `json:"base_url" yaml:"base_url"`
	OwnerID int64  `json:"owner_id" yaml:"owner_id"`

	// Output settings
	Format string `json:"format" yaml:"format"`

	// Logging
	LogLevel string `json:"log_level" yaml:"log_level"`
	LogFile  string `json:"log_file,omitempty" yaml:"log_file,omitempty"`

	// Interaction timing
	EditBlurDelay    time.Duration `json:"edit_blur_delay" yaml:"edit_blur_delay"`
	NewItemBlurDelay time.Duration `json:"new_item_blur_delay" yaml:"new_item_blur_delay"`

	// StaleAfter is how long a fetched list counts as fresh in the TUI.
	// Zero keeps it fresh until a write or refresh invalidates it.
	StaleAfter time.Duration `json:"stale_after" yaml:"stale_after"`

	// Behavior preferences (overridable by flags)
	Stats *bool `json:"stats,omitempty" yaml:"stats,omitempty"`

	// Sources tracks where each value came from (for debugging).
	Sources map[string]string `json:"-" yaml:"-"`
}

// fileConfig mirrors the on-disk YAML. Pointer fields distinguish
// "absent" from zero values.
type fileConfig struct {
	BaseURL          *string `yaml:"base_url"`
	OwnerID          *int64  `yaml:"owner_id"`
	Format           *string `yaml:"format"`
	LogLevel         *string `yaml:"log_level"`
	LogFile          *string `yaml:"log_file"`
	EditBlurDelay    *string `yaml:"edit_blur_delay"`
	NewItemBlurDelay *string `yaml:"new_item_blur_delay"`
	StaleAfter       *string `yaml:"stale_after"`
	Stats            *bool   `yaml:"stats"`
}

// Source indicates where a config value came from.
type Source string

const (
	SourceDefault Source = "default"
	SourceGlobal  Source = "global"
	SourceLocal   Source = "local"
	SourceEnv     Source = "env"
	SourceFlag    Source = "flag"
)

// Keys in the order `config show` prints them.
var Keys = []string{
	"base_url", "owner_id", "format", "log_level", "log_file",
	"edit_blur_delay", "new_item_blur_delay", "stale_after", "stats",
}

// FlagOverrides holds command-line flag values. Zero values are unset.
type FlagOverrides struct {
	BaseURL  string
	OwnerID  int64
	Format   string
	LogLevel string
	LogFile  string
}

// Default returns the default configuration.
func Default() *Config {
	cfg := &Config{
		BaseURL:          "http://localhost:3500",
		OwnerID:          1,
		Format:           "auto",
		LogLevel:         "info",
		EditBlurDelay:    200 * time.Millisecond,
		NewItemBlurDelay: 150 * time.Millisecond,
		StaleAfter:       30 * time.Second,
		Sources:          make(map[string]string),
	}
	for _, k := range Keys {
		if k != "log_file" && k != "stats" {
			cfg.Sources[k] = string(SourceDefault)
		}
	}
	return cfg
}

// Load loads configuration from all sources with proper precedence.
// Precedence: flags > env > local > global > defaults
func Load(overrides FlagOverrides) (*Config, error) {
	cfg := Default()

	loadFromFile(cfg, GlobalConfigPath(), SourceGlobal)
	if p := localConfigPath(); p != "" {
		loadFromFile(cfg, p, SourceLocal)
	}

	LoadFromEnv(cfg)
	ApplyOverrides(cfg, overrides)

	cfg.BaseURL = NormalizeBaseURL(cfg.BaseURL)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late, at request time.
func (cfg *Config) Validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base_url %q (from %s): want http(s)://host[:port]", cfg.BaseURL, cfg.Sources["base_url"])
	}
	if cfg.EditBlurDelay < 0 || cfg.NewItemBlurDelay < 0 {
		return fmt.Errorf("blur delays must not be negative")
	}
	if cfg.StaleAfter < 0 {
		return fmt.Errorf("stale_after must not be negative")
	}
	return nil
}

func loadFromFile(cfg *Config, path string, source Source) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: Path is from trusted config locations
	if err != nil {
		return // File doesn't exist, skip
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		fmt.Fprintf(os.Stderr, "warning: skipping malformed config at %s: %v\n", path, err)
		return
	}

	set := func(key string) { cfg.Sources[key] = string(source) }

	if fc.BaseURL != nil && *fc.BaseURL != "" {
		cfg.BaseURL = *fc.BaseURL
		set("base_url")
	}
	if fc.OwnerID != nil {
		cfg.OwnerID = *fc.OwnerID
		set("owner_id")
	}
	if fc.Format != nil && *fc.Format != "" {
		cfg.Format = *fc.Format
		set("format")
	}
	if fc.LogLevel != nil && *fc.LogLevel != "" {
		cfg.LogLevel = *fc.LogLevel
		set("log_level")
	}
	if fc.LogFile != nil && *fc.LogFile != "" {
		cfg.LogFile = *fc.LogFile
		set("log_file")
	}
	if fc.EditBlurDelay != nil {
		if d, ok := parseDuration(*fc.EditBlurDelay, "edit_blur_delay", path); ok {
			cfg.EditBlurDelay = d
			set("edit_blur_delay")
		}
	}
	if fc.NewItemBlurDelay != nil {
		if d, ok := parseDuration(*fc.NewItemBlurDelay, "new_item_blur_delay", path); ok {
			cfg.NewItemBlurDelay = d
			set("new_item_blur_delay")
		}
	}
	if fc.StaleAfter != nil {
		if d, ok := parseDuration(*fc.StaleAfter, "stale_after", path); ok {
			cfg.StaleAfter = d
			set("stale_after")
		}
	}
	if fc.Stats != nil {
		v := *fc.Stats
		cfg.Stats = &v
		set("stats")
	}
}

func parseDuration(v, key, path string) (time.Duration, bool) {
	d, err := time.ParseDuration(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: ignoring %s %q at %s: %v\n", key, v, path, err)
		return 0, false
	}
	return d, true
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("SHOPLIST_BASE_URL"); v != "" {
		cfg.BaseURL = v
		cfg.Sources["base_url"] = string(SourceEnv)
	}
	if v := os.Getenv("SHOPLIST_OWNER_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.OwnerID = id
			cfg.Sources["owner_id"] = string(SourceEnv)
		}
	}
	if v := os.Getenv("SHOPLIST_FORMAT"); v != "" {
		cfg.Format = v
		cfg.Sources["format"] = string(SourceEnv)
	}
	if v := os.Getenv("SHOPLIST_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
		cfg.Sources["log_level"] = string(SourceEnv)
	}
	if v := os.Getenv("SHOPLIST_LOG_FILE"); v != "" {
		cfg.LogFile = v
		cfg.Sources["log_file"] = string(SourceEnv)
	}
	if v := os.Getenv("SHOPLIST_STATS"); v != "" {
		if b, ok := parseEnvBool(v); ok {
			cfg.Stats = &b
			cfg.Sources["stats"] = string(SourceEnv)
		}
	}
}

// parseEnvBool parses a boolean environment variable strictly.
// Unrecognized values are ignored to preserve three-state pointer semantics.
func parseEnvBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// ApplyOverrides applies non-empty flag overrides to cfg.
func ApplyOverrides(cfg *Config, o FlagOverrides) {
	if o.BaseURL != "" {
		cfg.BaseURL = o.BaseURL
		cfg.Sources["base_url"] = string(SourceFlag)
	}
	if o.OwnerID != 0 {
		cfg.OwnerID = o.OwnerID
		cfg.Sources["owner_id"] = string(SourceFlag)
	}
	if o.Format != "" {
		cfg.Format = o.Format
		cfg.Sources["format"] = string(SourceFlag)
	}
	if o.LogLevel != "" {
		cfg.LogLevel = o.LogLevel
		cfg.Sources["log_level"] = string(SourceFlag)
	}
	if o.LogFile != "" {
		cfg.LogFile = o.LogFile
		cfg.Sources["log_file"] = string(SourceFlag)
	}
}

// Value returns the display form of a key, for `config show`.
func (cfg *Config) Value(key string) string {
	switch key {
	case "base_url":
		return cfg.BaseURL
	case "owner_id":
		return strconv.FormatInt(cfg.OwnerID, 10)
	case "format":
		return cfg.Format
	case "log_level":
		return cfg.LogLevel
	case "log_file":
		return cfg.LogFile
	case "edit_blur_delay":
		return cfg.EditBlurDelay.String()
	case "new_item_blur_delay":
		return cfg.NewItemBlurDelay.String()
	case "stale_after":
		return cfg.StaleAfter.String()
	case "stats":
		if cfg.Stats == nil {
			return ""
		}
		return strconv.FormatBool(*cfg.Stats)
	default:
		return ""
	}
}

// Path helpers

// GlobalConfigDir returns the global config directory path.
func GlobalConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "shoplist")
}

// GlobalConfigPath returns the global config file path.
func GlobalConfigPath() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// localConfigPath returns ./.shoplist/config.yaml when it exists.
// Only the working directory is consulted; parents are not walked.
func localConfigPath() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, ".shoplist", "config.yaml")
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

// StateDir returns the directory for logs and other runtime state.
func StateDir() string {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, _ := os.UserHomeDir()
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "shoplist")
}

// DefaultLogFile is where the TUI logs when no log file is configured.
func DefaultLogFile() string {
	return filepath.Join(StateDir(), "shoplist.log")
}

// NormalizeBaseURL ensures consistent URL format (no trailing slash).
// A bare host gets http:// when it is loopback and https:// otherwise.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "/")
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	if isLoopback(raw) {
		return "http://" + raw
	}
	return "https://" + raw
}

// isLoopback reports whether hostport names localhost, a .localhost
// subdomain or a loopback IP, with or without a port.
func isLoopback(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.Trim(host, "[]")
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
