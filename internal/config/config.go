package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"crosspost/internal/browser"
)

// Config holds all crosspost configuration.
type Config struct {
	// Browser launch settings
	Browser browser.Config `yaml:"browser"`

	// Site the articles come from
	Site SiteConfig `yaml:"site"`

	// Login detection
	Login LoginConfig `yaml:"login"`

	// Where artifacts such as the wechat HTML are written
	Drafts DraftsConfig `yaml:"drafts"`

	// Per-platform settings keyed by platform id (juejin, csdn, wechat)
	Platforms map[string]PlatformConfig `yaml:"platforms"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig describes the site the Markdown sources belong to.
type SiteConfig struct {
	BaseURL string `yaml:"base_url"` // relative image URLs are resolved against this
	Author  string `yaml:"author"`
	Footer  bool   `yaml:"footer"` // append a copyright footer linking back to BaseURL
}

// LoginConfig configures the login detector.
type LoginConfig struct {
	Timeout     string `yaml:"timeout"`
	Interval    string `yaml:"interval"`
	RemindEvery int    `yaml:"remind_every"`
}

// DraftsConfig configures artifact output.
type DraftsConfig struct {
	Dir string `yaml:"dir"`
}

// PlatformConfig overrides one publisher's defaults. Empty fields keep the built-in value.
type PlatformConfig struct {
	Enabled   bool              `yaml:"enabled"`
	EditorURL string            `yaml:"editor_url,omitempty"`
	Settle    string            `yaml:"settle,omitempty"`    // wait after injection for asset processing
	Selectors map[string]string `yaml:"selectors,omitempty"` // keyed by role, e.g. title, editor, publish
}

// DefaultStateDir is ~/.crosspost.
func DefaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".crosspost")
}

// DefaultConfigPath is the config file inside the state directory.
func DefaultConfigPath() string {
	return filepath.Join(DefaultStateDir(), "config.yaml")
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	state := DefaultStateDir()
	return &Config{
		Browser: browser.DefaultConfig(),
		Site: SiteConfig{
			Footer: false,
		},
		Login: LoginConfig{
			Timeout:     "120s",
			Interval:    "1s",
			RemindEvery: 10,
		},
		Drafts: DraftsConfig{
			Dir: filepath.Join(state, "drafts"),
		},
		Platforms: map[string]PlatformConfig{
			"juejin": {Enabled: true},
			"csdn":   {Enabled: true},
			"wechat": {Enabled: true},
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   filepath.Join(state, "logs"),
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("CROSSPOST_PROFILE_DIR"); dir != "" {
		c.Browser.ProfileDir = dir
	}
	if bin := os.Getenv("CROSSPOST_CHROME_BIN"); bin != "" {
		c.Browser.ChromeBin = bin
	}
	if v, ok := envBool("CROSSPOST_HEADLESS"); ok {
		c.Browser.Headless = v
	}
	if v, ok := envBool("CROSSPOST_SIMULATE"); ok {
		c.Browser.Simulated = v
	}
}

func envBool(key string) (bool, bool) {
	raw := os.Getenv(key)
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// GetLoginTimeout returns the login timeout as a duration.
func (c *Config) GetLoginTimeout() time.Duration {
	d, err := time.ParseDuration(c.Login.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// GetLoginInterval returns the login polling interval as a duration.
func (c *Config) GetLoginInterval() time.Duration {
	d, err := time.ParseDuration(c.Login.Interval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}

// GetRemindEvery returns how many login attempts pass between operator reminders.
func (c *Config) GetRemindEvery() int {
	if c.Login.RemindEvery <= 0 {
		return 10
	}
	return c.Login.RemindEvery
}

// Platform returns the settings for id. Platforms missing from the file are enabled.
func (c *Config) Platform(id string) PlatformConfig {
	if pc, ok := c.Platforms[id]; ok {
		return pc
	}
	return PlatformConfig{Enabled: true}
}

// GetSettle returns the platform's settle override, or def when unset or invalid.
func (p PlatformConfig) GetSettle(def time.Duration) time.Duration {
	if p.Settle == "" {
		return def
	}
	d, err := time.ParseDuration(p.Settle)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Browser.ViewportWidth < 0 || c.Browser.ViewportHeight < 0 {
		return fmt.Errorf("invalid viewport %dx%d", c.Browser.ViewportWidth, c.Browser.ViewportHeight)
	}
	if c.Browser.NavigationTimeoutMs < 0 {
		return fmt.Errorf("invalid navigation_timeout_ms: %d", c.Browser.NavigationTimeoutMs)
	}
	for name, raw := range map[string]string{"login.timeout": c.Login.Timeout, "login.interval": c.Login.Interval} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
	}
	for id, pc := range c.Platforms {
		if pc.Settle == "" {
			continue
		}
		if _, err := time.ParseDuration(pc.Settle); err != nil {
			return fmt.Errorf("invalid platforms.%s.settle %q: %w", id, pc.Settle, err)
		}
	}
	if c.Site.Footer && c.Site.BaseURL == "" {
		return fmt.Errorf("site.footer requires site.base_url")
	}
	return nil
}
