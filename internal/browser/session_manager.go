// Package browser drives a persistent-profile Chrome over the DevTools protocol
// (go-rod) behind the Page/Session capability surface, and provides a simulated
// stand-in so the publishing pipeline can run without a browser or network.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// NewLauncher returns the simulated launcher when cfg.Simulated is set and the
// rod-backed SessionManager otherwise.
func NewLauncher(cfg Config, logger *zap.Logger) Launcher {
	if cfg.Simulated {
		return NewSimulatedLauncher(logger)
	}
	return NewSessionManager(cfg, logger)
}

// SessionManager launches Chrome bound to the configured profile directory and
// connects to it. The profile directory survives runs so logins persist.
type SessionManager struct {
	cfg      Config
	log      *zap.Logger
	lookPath func() (string, bool)
}

// NewSessionManager creates a new session manager.
func NewSessionManager(cfg Config, logger *zap.Logger) *SessionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionManager{
		cfg:      cfg,
		log:      logger,
		lookPath: launcher.LookPath,
	}
}

func (m *SessionManager) resolveBin() (string, error) {
	if m.cfg.ChromeBin != "" {
		if _, err := os.Stat(m.cfg.ChromeBin); err != nil {
			return "", fmt.Errorf("configured chrome_bin: %w", err)
		}
		return m.cfg.ChromeBin, nil
	}
	if bin, ok := m.lookPath(); ok {
		return bin, nil
	}
	return "", errors.New("no Chrome or Chromium installation found; set browser.chrome_bin")
}

// Launch starts Chrome and connects to its control channel. Any partially acquired
// resources are released before an error is returned.
func (m *SessionManager) Launch(ctx context.Context) (Session, error) {
	bin, err := m.resolveBin()
	if err != nil {
		return nil, &LaunchError{Op: "locate", Err: err}
	}

	profile := m.cfg.GetProfileDir()
	if err := os.MkdirAll(profile, 0o755); err != nil {
		return nil, &LaunchError{Op: "profile", Err: err}
	}
	m.log.Info("launching browser", zap.String("bin", bin), zap.String("profile", profile))

	l := launcher.New().
		Context(ctx).
		Bin(bin).
		Headless(m.cfg.Headless).
		UserDataDir(profile).
		Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", m.cfg.GetViewportWidth(), m.cfg.GetViewportHeight())).
		Set(flags.Flag("disable-infobars")).
		Set(flags.Flag("no-first-run")).
		Set(flags.Flag("no-default-browser-check"))
	for _, rawFlag := range m.cfg.ExtraFlags {
		flagStr := strings.TrimLeft(rawFlag, "-")
		name, val, hasVal := strings.Cut(flagStr, "=")
		if hasVal {
			l = l.Set(flags.Flag(name), val)
		} else {
			l = l.Set(flags.Flag(name))
		}
	}

	sess := &RodSession{cfg: m.cfg, log: m.log, launcher: l}

	controlURL, err := l.Launch()
	if err != nil {
		_ = sess.Close()
		return nil, &LaunchError{Op: "launch", Err: err}
	}
	m.log.Debug("browser control channel", zap.String("url", controlURL))

	b := rod.New().ControlURL(controlURL).Context(ctx).NoDefaultDevice()
	if err := b.Connect(); err != nil {
		_ = sess.Close()
		return nil, &LaunchError{Op: "connect", Err: err}
	}
	sess.browser = b

	// In-page clipboard writes need the permission granted up front.
	if err := (proto.BrowserGrantPermissions{
		Permissions: []proto.BrowserPermissionType{
			proto.BrowserPermissionTypeClipboardReadWrite,
			proto.BrowserPermissionTypeClipboardSanitizedWrite,
		},
	}).Call(b); err != nil {
		m.log.Warn("failed to grant clipboard permissions", zap.Error(err))
	}

	return sess, nil
}

// RodSession is a launched Chrome shared by all publishers of one run.
type RodSession struct {
	cfg      Config
	log      *zap.Logger
	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool
}

// NewPage opens a blank page sized to the configured viewport.
func (s *RodSession) NewPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	b, closed := s.browser, s.closed
	s.mu.Unlock()
	if closed || b == nil {
		return nil, &DriverError{Op: "new page", Err: ErrPageClosed}
	}

	page, err := b.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, driverErr("new page", "", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.GetViewportWidth(),
		Height:            s.cfg.GetViewportHeight(),
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		s.log.Warn("failed to set viewport", zap.Error(err))
	}

	return newRodPage(page, s.cfg.NavigationTimeout(), s.log), nil
}

// Simulated reports false: pages drive a real browser.
func (s *RodSession) Simulated() bool { return false }

// Close disconnects from and kills the browser. Safe to call repeatedly and after
// a partial launch.
func (s *RodSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
	s.log.Info("browser session closed")
	return err
}
