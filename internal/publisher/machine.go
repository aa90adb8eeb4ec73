package publisher

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"crosspost/internal/browser"
	"crosspost/internal/inject"
	"crosspost/internal/login"
	"crosspost/internal/ux"
)

// ErrLoginWaitCancelled is returned when an unbounded, human-gated login wait ends
// because the run was cancelled.
var ErrLoginWaitCancelled = errors.New("login wait cancelled")

// Deps are the collaborators every publisher shares.
type Deps struct {
	Log      *zap.Logger
	Notify   ux.Notifier
	Login    *login.Detector
	Injector *inject.Injector
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Notify == nil {
		d.Notify = ux.Nop{}
	}
	if d.Login == nil {
		d.Login = login.NewDetector(d.Log, d.Notify)
	}
	if d.Injector == nil {
		d.Injector = inject.New(d.Log, d.Notify)
	}
	return d
}

// step moves the machine into state when run succeeds.
type step struct {
	state State
	name  string
	run   func(ctx context.Context) error
}

// machine runs one publisher's steps and turns the outcome into a Result.
type machine struct {
	platform Platform
	deps     Deps
	log      *zap.Logger

	page     browser.Page
	state    State
	status   Status // set by the final step
	artifact string
}

func newMachine(p Platform, deps Deps) *machine {
	deps = deps.withDefaults()
	return &machine{
		platform: p,
		deps:     deps,
		log:      deps.Log.With(zap.String("platform", string(p))),
		state:    StateStart,
		status:   StatusManualCheckRequired,
	}
}

func (m *machine) say(format string, args ...any) {
	m.deps.Notify.Info("[%s] "+format, append([]any{m.platform.DisplayName()}, args...)...)
}

func (m *machine) warn(format string, args ...any) {
	m.deps.Notify.Warn("[%s] "+format, append([]any{m.platform.DisplayName()}, args...)...)
}

// execute opens a page on session and runs build's steps against it. A failed
// step ends the run; there are no retries.
func (m *machine) execute(ctx context.Context, session browser.Session, build func() []step) (res Result) {
	start := time.Now()
	m.deps.Notify.Info("publishing to %s...", m.platform.DisplayName())

	defer func() {
		if r := recover(); r != nil {
			m.log.Error("publisher panicked", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
			res = m.fail(fmt.Errorf("panic: %v", r), start)
		}
	}()

	steps := append([]step{{
		state: StatePageOpened,
		name:  "open page",
		run: func(ctx context.Context) error {
			page, err := session.NewPage(ctx)
			if err != nil {
				return err
			}
			m.page = page
			return nil
		},
	}}, build()...)

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return m.fail(fmt.Errorf("%s: %w", s.name, err), start)
		}
		m.log.Debug("step", zap.String("step", s.name), zap.Stringer("from", m.state))
		if err := s.run(ctx); err != nil {
			return m.fail(fmt.Errorf("%s: %w", s.name, err), start)
		}
		if s.state != m.state {
			m.log.Info("state", zap.Stringer("state", s.state))
			m.state = s.state
		}
	}

	res = Result{
		Platform:     m.platform,
		Status:       m.status,
		State:        StateDone,
		Reached:      m.state,
		ArtifactPath: m.artifact,
		Duration:     time.Since(start),
	}
	m.deps.Notify.Success("%s is ready, confirm and publish in the browser", m.platform.DisplayName())
	return res
}

func (m *machine) fail(err error, start time.Time) Result {
	m.log.Error("publish failed", zap.Stringer("reached", m.state), zap.Error(err))
	m.deps.Notify.Error("%s failed: %v", m.platform.DisplayName(), err)
	return Result{
		Platform:     m.platform,
		Status:       StatusFailed,
		State:        StateFailed,
		Reached:      m.state,
		Error:        err.Error(),
		ArtifactPath: m.artifact,
		Duration:     time.Since(start),
	}
}

// Shared steps.

func (m *machine) openEditor(url string) step {
	return step{state: StatePageOpened, name: "open editor", run: func(ctx context.Context) error {
		m.say("opening %s", url)
		return m.page.Open(ctx, url)
	}}
}

func (m *machine) awaitLogin(probe login.Probe) step {
	return step{state: StateLoggingIn, name: "await login", run: func(ctx context.Context) error {
		out, err := m.deps.Login.Await(ctx, m.page, probe)
		if err != nil {
			return err
		}
		m.log.Debug("login outcome", zap.Bool("detected", out.Detected), zap.String("signal", out.Signal))
		return nil
	}}
}

func (m *machine) awaitEditor(selector string, timeout time.Duration) step {
	return step{state: StateEditorReady, name: "await editor", run: func(ctx context.Context) error {
		return m.page.WaitFor(ctx, selector, timeout)
	}}
}

func (m *machine) fillTitle(selector, title string, wait time.Duration) step {
	return step{state: StateTitleFilled, name: "fill title", run: func(ctx context.Context) error {
		m.say("filling title")
		if err := m.page.WaitFor(ctx, selector, wait); err != nil {
			return err
		}
		if err := m.page.SetFieldValue(ctx, selector, ""); err != nil {
			return err
		}
		return m.page.TypeInto(ctx, selector, title)
	}}
}

// injectContent treats inject.ErrInjectionFailed as soft: the operator pastes by hand.
func (m *machine) injectContent(text string, opts inject.Options) step {
	return step{state: StateContentInjected, name: "inject content", run: func(ctx context.Context) error {
		m.say("filling content")
		res, err := m.deps.Injector.Inject(ctx, m.page, text, opts)
		if errors.Is(err, inject.ErrInjectionFailed) {
			m.warn("content was not filled in, paste it manually")
			return nil
		}
		if err != nil {
			return err
		}
		m.log.Info("content injected", zap.Stringer("tier", res.Tier))
		return nil
	}}
}

// wait is a settle delay that honours cancellation.
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
