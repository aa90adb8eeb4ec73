package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvOverrides_Browser(t *testing.T) {
	t.Run("CROSSPOST_PROFILE_DIR replaces profile dir", func(t *testing.T) {
		t.Setenv("CROSSPOST_PROFILE_DIR", "/tmp/profile")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "/tmp/profile", cfg.Browser.ProfileDir)
	})

	t.Run("CROSSPOST_CHROME_BIN sets binary", func(t *testing.T) {
		t.Setenv("CROSSPOST_CHROME_BIN", "/opt/chrome/chrome")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, "/opt/chrome/chrome", cfg.Browser.ChromeBin)
	})

	t.Run("boolean flags parse", func(t *testing.T) {
		t.Setenv("CROSSPOST_HEADLESS", "true")
		t.Setenv("CROSSPOST_SIMULATE", "1")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Browser.Headless)
		assert.True(t, cfg.Browser.Simulated)
	})

	t.Run("unparseable boolean is ignored", func(t *testing.T) {
		t.Setenv("CROSSPOST_SIMULATE", "maybe")

		cfg := &Config{}
		cfg.Browser.Simulated = true
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Browser.Simulated)
	})

	t.Run("explicit false overrides file value", func(t *testing.T) {
		t.Setenv("CROSSPOST_HEADLESS", "false")

		cfg := &Config{}
		cfg.Browser.Headless = true
		cfg.applyEnvOverrides()

		assert.False(t, cfg.Browser.Headless)
	})
}

func TestLoggingConfig_Options(t *testing.T) {
	lc := LoggingConfig{Level: "debug", DebugMode: true, Dir: "/tmp/logs", Categories: map[string]bool{"login": false}}
	opts := lc.Options()

	assert.Equal(t, "debug", opts.Level)
	assert.True(t, opts.DebugMode)
	assert.Equal(t, "/tmp/logs", opts.Dir)
	assert.False(t, opts.Categories["login"])
}
