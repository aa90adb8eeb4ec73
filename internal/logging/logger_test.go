package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOptions_IsCategoryEnabled(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		cat  Category
		want bool
	}{
		{"debug off", Options{}, CategoryLogin, false},
		{"debug on, no filter", Options{DebugMode: true}, CategoryLogin, true},
		{"debug on, disabled", Options{DebugMode: true, Categories: map[string]bool{"login": false}}, CategoryLogin, false},
		{"debug on, unlisted", Options{DebugMode: true, Categories: map[string]bool{"inject": false}}, CategoryLogin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.IsCategoryEnabled(tt.cat))
		})
	}
}

func TestLoggers_ConsoleOnlyWhenNotDebug(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	dir := t.TempDir()

	l, err := New(zap.New(core), Options{Dir: dir})
	require.NoError(t, err)
	defer l.Close()

	l.Get(CategoryPublish).Info("publisher started")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "publish", entries[0].LoggerName)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestLoggers_DebugModeWritesCategoryFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := New(zap.NewNop(), Options{DebugMode: true, Dir: dir, Level: "debug"})
	require.NoError(t, err)

	l.Get(CategoryInject).Debug("tier 1 succeeded")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(filepath.Join(dir, "inject.log"))
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "tier 1 succeeded"))
}

func TestLoggers_GetIsCached(t *testing.T) {
	l := Nop()
	assert.Same(t, l.Get(CategoryBrowser), l.Get(CategoryBrowser))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(nil, Options{Level: "loud"})
	require.Error(t, err)
}

func TestNew_DebugWithoutDir(t *testing.T) {
	_, err := New(nil, Options{DebugMode: true})
	require.Error(t, err)
}
