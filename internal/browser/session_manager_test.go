package browser

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 1280, cfg.GetViewportWidth())
	assert.Equal(t, 800, cfg.GetViewportHeight())
	assert.Contains(t, cfg.GetProfileDir(), filepath.Join(".crosspost", "chrome-data"))

	var zero Config
	assert.Equal(t, 1280, zero.GetViewportWidth())
	assert.Equal(t, DefaultProfileDir(), zero.GetProfileDir())
	assert.Equal(t, int64(60), int64(zero.NavigationTimeout().Seconds()))
}

func TestLaunch_NoBrowserFound(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProfileDir = t.TempDir()
	m := NewSessionManager(cfg, zap.NewNop())
	m.lookPath = func() (string, bool) { return "", false }

	sess, err := m.Launch(context.Background())
	require.Error(t, err)
	assert.Nil(t, sess)

	var launchErr *LaunchError
	require.True(t, errors.As(err, &launchErr))
	assert.Equal(t, "locate", launchErr.Op)
}

func TestLaunch_ConfiguredBinaryMissing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ProfileDir = t.TempDir()
	cfg.ChromeBin = filepath.Join(t.TempDir(), "no-such-chrome")
	m := NewSessionManager(cfg, zap.NewNop())

	_, err := m.Launch(context.Background())
	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, "locate", launchErr.Op)
}

func TestRodSession_CloseIsIdempotentAfterPartialLaunch(t *testing.T) {
	// A session that never connected has neither browser nor launcher.
	s := &RodSession{log: zap.NewNop()}
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := s.NewPage(context.Background())
	require.Error(t, err)
	assert.True(t, IsPageClosed(err))
}

func TestNewLauncher_Simulated(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Simulated = true
	l := NewLauncher(cfg, nil)
	_, ok := l.(*SimulatedLauncher)
	assert.True(t, ok)

	cfg.Simulated = false
	_, ok = NewLauncher(cfg, nil).(*SessionManager)
	assert.True(t, ok)
}

func TestPrimaryModifier(t *testing.T) {
	tests := []struct {
		goos string
		want Modifier
	}{
		{"darwin", ModifierMeta},
		{"linux", ModifierControl},
		{"windows", ModifierControl},
		{"freebsd", ModifierControl},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			assert.Equal(t, tt.want, PrimaryModifier(tt.goos))
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(false))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy(float64(0)))
	assert.True(t, Truthy(true))
	assert.True(t, Truthy("x"))
	assert.True(t, Truthy(float64(2)))
	assert.True(t, Truthy(map[string]any{}))
}

func TestDriverError(t *testing.T) {
	err := &DriverError{Op: "click", Target: ".btn", Err: ErrPageClosed}
	assert.Equal(t, `click ".btn": page is closed`, err.Error())
	assert.True(t, IsPageClosed(err))

	bare := &DriverError{Op: "cookies", Err: errors.New("boom")}
	assert.Equal(t, "cookies: boom", bare.Error())
	assert.False(t, IsPageClosed(bare))
	assert.Nil(t, driverErr("noop", "", nil))
}
