package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// simPollInterval is how often a simulated WaitUntilTrue re-evaluates its handler.
const simPollInterval = 10 * time.Millisecond

// ScriptHandler answers a named script on a SimPage.
type ScriptHandler func(args []any) (any, error)

// SimulatedLauncher hands out SimSessions. It never touches the network or disk.
type SimulatedLauncher struct {
	log *zap.Logger
	// Configure, when set, is applied to every page the launched session opens.
	Configure func(*SimPage)
	// FailWith makes Launch fail, for exercising the fatal path.
	FailWith error
}

// NewSimulatedLauncher creates a simulated launcher.
func NewSimulatedLauncher(logger *zap.Logger) *SimulatedLauncher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimulatedLauncher{log: logger}
}

// Launch returns a fresh SimSession.
func (l *SimulatedLauncher) Launch(ctx context.Context) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LaunchError{Op: "launch", Err: err}
	}
	if l.FailWith != nil {
		return nil, &LaunchError{Op: "launch", Err: l.FailWith}
	}
	l.log.Info("[simulated] browser launched")
	s := NewSimSession(l.log)
	s.Configure = l.Configure
	return s, nil
}

// SimSession is a Session whose pages are deterministic logged stubs.
type SimSession struct {
	log       *zap.Logger
	Configure func(*SimPage)

	mu         sync.Mutex
	pages      []*SimPage
	closed     bool
	closeCalls int
}

// NewSimSession creates a simulated session.
func NewSimSession(logger *zap.Logger) *SimSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimSession{log: logger}
}

// NewPage opens a new simulated page.
func (s *SimSession) NewPage(ctx context.Context) (Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, &DriverError{Op: "new page", Err: ErrPageClosed}
	}
	p := NewSimPage(s.log)
	if s.Configure != nil {
		s.Configure(p)
	}
	s.pages = append(s.pages, p)
	return p, nil
}

// Pages returns every page opened so far, in order.
func (s *SimSession) Pages() []*SimPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*SimPage, len(s.pages))
	copy(out, s.pages)
	return out
}

// Simulated reports true.
func (s *SimSession) Simulated() bool { return true }

// Close marks the session closed. Pages stay inspectable.
func (s *SimSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeCalls++
	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Info("[simulated] browser disconnected")
	return nil
}

// Closed reports whether Close has been called at least once.
func (s *SimSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Call is one recorded operation on a SimPage.
type Call struct {
	Op     string
	Target string
	Args   []any
}

// SimPage records every operation. By default every selector resolves, no cookie
// is set, and scripts without a handler return nil.
type SimPage struct {
	log *zap.Logger

	mu        sync.Mutex
	url       string
	redirect  string
	closed    bool
	calls     []Call
	missing   map[string]bool
	cookies   []Cookie
	scripts   map[string]ScriptHandler
	failOps   map[string]error
	queryHits int
}

// NewSimPage creates a page at about:blank.
func NewSimPage(logger *zap.Logger) *SimPage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimPage{
		log:       logger,
		url:       "about:blank",
		missing:   make(map[string]bool),
		scripts:   make(map[string]ScriptHandler),
		failOps:   make(map[string]error),
		queryHits: 1,
	}
}

// SetMissing makes the given selectors resolve to nothing.
func (p *SimPage) SetMissing(selectors ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range selectors {
		p.missing[s] = true
	}
}

// MissingAll makes every selector resolve to nothing except the given ones.
func (p *SimPage) MissingAll(except ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.missing = map[string]bool{"*": true}
	for _, s := range except {
		p.missing["!"+s] = true
	}
}

// SetCookies replaces the page's cookie jar.
func (p *SimPage) SetCookies(cookies ...Cookie) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cookies = append([]Cookie(nil), cookies...)
}

// HandleScript installs a handler for the script with the given name.
func (p *SimPage) HandleScript(name string, h ScriptHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scripts[name] = h
}

// RedirectTo makes the next Open land on url instead of the requested one.
func (p *SimPage) RedirectTo(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.redirect = url
}

// SetURL changes the current URL.
func (p *SimPage) SetURL(url string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
}

// FailOp makes every later call of op fail with err wrapped in a DriverError.
func (p *SimPage) FailOp(op string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failOps[op] = err
}

// Calls returns a copy of the recorded operations.
func (p *SimPage) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallsOf returns the recorded operations named op.
func (p *SimPage) CallsOf(op string) []Call {
	var out []Call
	for _, c := range p.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Ops returns the names of the recorded operations in order.
func (p *SimPage) Ops() []string {
	calls := p.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Op)
	}
	return out
}

// record logs and stores a call, returning the closed/injected failure if any.
func (p *SimPage) record(op, target string, args ...any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{Op: op, Target: target, Args: args})
	p.log.Debug("[simulated] "+op, zap.String("target", target))
	if p.closed {
		return &DriverError{Op: op, Target: target, Err: ErrPageClosed}
	}
	if err, ok := p.failOps[op]; ok {
		return &DriverError{Op: op, Target: target, Err: err}
	}
	return nil
}

func (p *SimPage) isMissing(selector string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.missing["*"] {
		return !p.missing["!"+selector]
	}
	return p.missing[selector]
}

func (p *SimPage) Open(ctx context.Context, url string) error {
	if err := p.record("open", url); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.redirect != "" {
		p.url, p.redirect = p.redirect, ""
	} else {
		p.url = url
	}
	return nil
}

func (p *SimPage) WaitUntilTrue(ctx context.Context, pred Script, timeout time.Duration, args ...any) error {
	if err := p.record("wait", pred.Name, args...); err != nil {
		return err
	}
	p.mu.Lock()
	h, ok := p.scripts[pred.Name]
	p.mu.Unlock()
	if !ok {
		return nil
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	ticker := time.NewTicker(simPollInterval)
	defer ticker.Stop()
	for {
		v, err := h(args)
		if err != nil {
			return &DriverError{Op: "wait", Target: pred.Name, Err: err}
		}
		if Truthy(v) {
			return nil
		}
		select {
		case <-ctx.Done():
			return &DriverError{Op: "wait", Target: pred.Name, Err: ctx.Err()}
		case <-ticker.C:
		}
	}
}

func (p *SimPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.record("wait for", selector); err != nil {
		return err
	}
	if p.isMissing(selector) {
		return &DriverError{Op: "wait for", Target: selector, Err: errors.New("element not found")}
	}
	return nil
}

func (p *SimPage) Exists(ctx context.Context, selector string) (bool, error) {
	if err := p.record("exists", selector); err != nil {
		return false, err
	}
	return !p.isMissing(selector), nil
}

func (p *SimPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if err := p.record("query all", selector); err != nil {
		return nil, err
	}
	if p.isMissing(selector) {
		return nil, nil
	}
	p.mu.Lock()
	n := p.queryHits
	p.mu.Unlock()
	out := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, simElement{page: p, selector: selector})
	}
	return out, nil
}

func (p *SimPage) TypeInto(ctx context.Context, selector, text string) error {
	if err := p.record("type", selector, text); err != nil {
		return err
	}
	return p.requirePresent("type", selector)
}

func (p *SimPage) SetFieldValue(ctx context.Context, selector, text string) error {
	if err := p.record("set value", selector, text); err != nil {
		return err
	}
	return p.requirePresent("set value", selector)
}

func (p *SimPage) Click(ctx context.Context, selector string) error {
	if err := p.record("click", selector); err != nil {
		return err
	}
	return p.requirePresent("click", selector)
}

func (p *SimPage) requirePresent(op, selector string) error {
	if p.isMissing(selector) {
		return &DriverError{Op: op, Target: selector, Err: errors.New("element not found")}
	}
	return nil
}

func (p *SimPage) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := p.record("cookies", ""); err != nil {
		return nil, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Cookie(nil), p.cookies...), nil
}

func (p *SimPage) RunScript(ctx context.Context, script Script, args ...any) (any, error) {
	if err := p.record("script", script.Name, args...); err != nil {
		return nil, err
	}
	p.mu.Lock()
	h, ok := p.scripts[script.Name]
	p.mu.Unlock()
	if !ok {
		return nil, nil
	}
	v, err := h(args)
	if err != nil {
		return nil, &DriverError{Op: "script", Target: script.Name, Err: err}
	}
	return v, nil
}

func (p *SimPage) PressKeyChord(ctx context.Context, mod Modifier, key string) error {
	return p.record("key chord", fmt.Sprintf("%s+%s", mod, strings.ToUpper(key)))
}

func (p *SimPage) CurrentURL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *SimPage) IsClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *SimPage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type simElement struct {
	page     *SimPage
	selector string
}

func (e simElement) Click(ctx context.Context) error {
	return e.page.record("click element", e.selector)
}
