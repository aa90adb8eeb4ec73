// Package login waits for the operator to be signed in to a platform.
//
// A Detector polls a page for a Probe's signals: any selector that resolves or a
// cookie with the probe's name. Detection is advisory. When the timeout elapses
// without a signal the detector warns and returns an optimistic Outcome so the
// publisher can carry on and let the operator finish in the open page.
package login

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"crosspost/internal/browser"
	"crosspost/internal/ux"
)

const (
	DefaultInterval    = time.Second
	DefaultTimeout     = 120 * time.Second
	DefaultRemindEvery = 10
)

// ErrEmptyProbe is returned by Probe.Validate when there is nothing to look for.
var ErrEmptyProbe = errors.New("login probe has no selectors and no cookie name")

// Probe lists the signals that mean "logged in".
type Probe struct {
	Selectors  []string
	CookieName string
	Timeout    time.Duration
}

// Validate reports whether the probe can ever succeed. Await still terminates for
// an invalid probe; it just never detects anything.
func (p Probe) Validate() error {
	if len(p.Selectors) == 0 && p.CookieName == "" {
		return ErrEmptyProbe
	}
	return nil
}

// Outcome reports how detection ended.
type Outcome struct {
	Detected bool
	Signal   string // selector or "cookie:<name>" that matched
	Attempts int
	Elapsed  time.Duration
}

// Detector polls pages for login signals.
type Detector struct {
	log         *zap.Logger
	notify      ux.Notifier
	interval    time.Duration
	remindEvery int
}

// Option configures a Detector.
type Option func(*Detector)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(det *Detector) {
		if d > 0 {
			det.interval = d
		}
	}
}

// WithRemindEvery sets how many failed attempts pass between operator reminders.
func WithRemindEvery(n int) Option {
	return func(det *Detector) {
		if n > 0 {
			det.remindEvery = n
		}
	}
}

// NewDetector creates a detector. Nil logger or notifier discard output.
func NewDetector(logger *zap.Logger, notify ux.Notifier, opts ...Option) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notify == nil {
		notify = ux.Nop{}
	}
	d := &Detector{
		log:         logger,
		notify:      notify,
		interval:    DefaultInterval,
		remindEvery: DefaultRemindEvery,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// maxAttempts is ceil(timeout/interval), at least one.
func (d *Detector) maxAttempts(timeout time.Duration) int {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	n := int((timeout + d.interval - 1) / d.interval)
	if n < 1 {
		n = 1
	}
	return n
}

// Await polls page until probe is satisfied or its timeout elapses. A timeout is
// not an error. A closed page returns a *browser.DriverError and a cancelled
// context returns ctx.Err().
func (d *Detector) Await(ctx context.Context, page browser.Page, probe Probe) (Outcome, error) {
	start := time.Now()
	if err := probe.Validate(); err != nil {
		d.log.Warn("login probe is empty, waiting out the timeout")
	}

	limit := d.maxAttempts(probe.Timeout)
	d.notify.Info("checking login state...")

	for attempt := 1; attempt <= limit; attempt++ {
		if err := ctx.Err(); err != nil {
			return Outcome{Attempts: attempt - 1, Elapsed: time.Since(start)}, err
		}
		if page.IsClosed() {
			return Outcome{Attempts: attempt - 1, Elapsed: time.Since(start)},
				&browser.DriverError{Op: "login check", Err: browser.ErrPageClosed}
		}

		signal, err := d.check(ctx, page, probe)
		if err != nil {
			return Outcome{Attempts: attempt, Elapsed: time.Since(start)}, err
		}
		if signal != "" {
			d.log.Info("login detected", zap.String("signal", signal), zap.Int("attempt", attempt))
			d.notify.Success("logged in")
			return Outcome{Detected: true, Signal: signal, Attempts: attempt, Elapsed: time.Since(start)}, nil
		}

		if attempt%d.remindEvery == 0 {
			remaining := time.Duration(limit-attempt) * d.interval
			d.notify.Info("waiting for login... (%ds left)", int(remaining.Seconds()))
		}
		if attempt == limit {
			break
		}

		timer := time.NewTimer(d.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Outcome{Attempts: attempt, Elapsed: time.Since(start)}, ctx.Err()
		case <-timer.C:
		}
	}

	d.log.Warn("login not detected before timeout, continuing", zap.Int("attempts", limit))
	d.notify.Warn("login not detected, continuing anyway")
	return Outcome{Attempts: limit, Elapsed: time.Since(start)}, nil
}

// check returns the first signal present. Lookup errors other than a closed page
// count as "not present".
func (d *Detector) check(ctx context.Context, page browser.Page, probe Probe) (string, error) {
	for _, sel := range probe.Selectors {
		ok, err := page.Exists(ctx, sel)
		if err != nil {
			if browser.IsPageClosed(err) {
				return "", err
			}
			d.log.Debug("selector check failed", zap.String("selector", sel), zap.Error(err))
			continue
		}
		if ok {
			return sel, nil
		}
	}

	if probe.CookieName == "" {
		return "", nil
	}
	cookies, err := page.Cookies(ctx)
	if err != nil {
		if browser.IsPageClosed(err) {
			return "", err
		}
		d.log.Debug("cookie check failed", zap.Error(err))
		return "", nil
	}
	for _, c := range cookies {
		if c.Name == probe.CookieName {
			return fmt.Sprintf("cookie:%s", c.Name), nil
		}
	}
	return "", nil
}
