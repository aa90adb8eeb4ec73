package browser

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds browser configuration.
type Config struct {
	ChromeBin           string   `yaml:"chrome_bin"`
	ProfileDir          string   `yaml:"profile_dir"`
	Headless            bool     `yaml:"headless"`
	ViewportWidth       int      `yaml:"viewport_width"`
	ViewportHeight      int      `yaml:"viewport_height"`
	NavigationTimeoutMs int      `yaml:"navigation_timeout_ms"`
	ExtraFlags          []string `yaml:"extra_flags"`
	Simulated           bool     `yaml:"simulated"`
}

// DefaultProfileDir is the persistent profile under the user's home directory.
func DefaultProfileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".crosspost", "chrome-data")
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ProfileDir:          DefaultProfileDir(),
		Headless:            false,
		ViewportWidth:       1280,
		ViewportHeight:      800,
		NavigationTimeoutMs: 60000,
	}
}

// GetViewportWidth returns viewport width.
func (c Config) GetViewportWidth() int {
	if c.ViewportWidth == 0 {
		return 1280
	}
	return c.ViewportWidth
}

// GetViewportHeight returns viewport height.
func (c Config) GetViewportHeight() int {
	if c.ViewportHeight == 0 {
		return 800
	}
	return c.ViewportHeight
}

// NavigationTimeout returns the navigation timeout.
func (c Config) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 60 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// GetProfileDir returns the profile directory, falling back to the default.
func (c Config) GetProfileDir() string {
	if c.ProfileDir == "" {
		return DefaultProfileDir()
	}
	return c.ProfileDir
}
