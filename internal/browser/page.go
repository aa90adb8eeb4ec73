package browser

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// setFieldValueScript assigns a form value without typing and notifies listeners.
var setFieldValueScript = Script{
	Name: "set-field-value",
	Source: `(sel, text) => {
		const el = document.querySelector(sel);
		if (!el) return false;
		el.value = text;
		el.dispatchEvent(new Event('input', { bubbles: true }));
		el.dispatchEvent(new Event('change', { bubbles: true }));
		return true;
	}`,
}

type rodPage struct {
	page       *rod.Page
	navTimeout time.Duration
	log        *zap.Logger
	closed     atomic.Bool
}

func newRodPage(page *rod.Page, navTimeout time.Duration, logger *zap.Logger) *rodPage {
	return &rodPage{page: page, navTimeout: navTimeout, log: logger}
}

func (p *rodPage) fail(op, target string, err error) error {
	if err == nil {
		return nil
	}
	if p.IsClosed() {
		return &DriverError{Op: op, Target: target, Err: fmt.Errorf("%w: %v", ErrPageClosed, err)}
	}
	return &DriverError{Op: op, Target: target, Err: err}
}

func (p *rodPage) guard(op, target string) error {
	if p.closed.Load() {
		return &DriverError{Op: op, Target: target, Err: ErrPageClosed}
	}
	return nil
}

func (p *rodPage) Open(ctx context.Context, url string) error {
	if err := p.guard("open", url); err != nil {
		return err
	}
	pg := p.page.Context(ctx).Timeout(p.navTimeout)
	defer pg.CancelTimeout()

	if err := pg.Navigate(url); err != nil {
		return p.fail("open", url, err)
	}
	if err := pg.WaitLoad(); err != nil {
		return p.fail("wait load", url, err)
	}
	return nil
}

func (p *rodPage) WaitUntilTrue(ctx context.Context, pred Script, timeout time.Duration, args ...any) error {
	if err := p.guard("wait", pred.Name); err != nil {
		return err
	}
	pg := p.page.Context(ctx)
	if timeout > 0 {
		pg = pg.Timeout(timeout)
		defer pg.CancelTimeout()
	}
	return p.fail("wait", pred.Name, pg.Wait(rod.Eval(pred.Source, args...)))
}

func (p *rodPage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	if err := p.guard("wait for", selector); err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = p.navTimeout
	}
	pg := p.page.Context(ctx).Timeout(timeout)
	defer pg.CancelTimeout()
	_, err := pg.Element(selector)
	return p.fail("wait for", selector, err)
}

func (p *rodPage) Exists(ctx context.Context, selector string) (bool, error) {
	if err := p.guard("query", selector); err != nil {
		return false, err
	}
	has, _, err := p.page.Context(ctx).Has(selector)
	if err != nil {
		return false, p.fail("query", selector, err)
	}
	return has, nil
}

func (p *rodPage) QueryAll(ctx context.Context, selector string) ([]Element, error) {
	if err := p.guard("query all", selector); err != nil {
		return nil, err
	}
	pg := p.page.Context(ctx)
	var (
		els rod.Elements
		err error
	)
	if expr, ok := strings.CutPrefix(selector, XPathPrefix); ok {
		els, err = pg.ElementsX(expr)
	} else {
		els, err = pg.Elements(selector)
	}
	if err != nil {
		return nil, p.fail("query all", selector, err)
	}
	out := make([]Element, 0, len(els))
	for _, el := range els {
		out = append(out, rodElement{el: el})
	}
	return out, nil
}

func (p *rodPage) element(ctx context.Context, selector string) (*rod.Element, func(), error) {
	pg := p.page.Context(ctx).Timeout(p.navTimeout)
	el, err := pg.Element(selector)
	if err != nil {
		pg.CancelTimeout()
		return nil, func() {}, err
	}
	return el, func() { pg.CancelTimeout() }, nil
}

func (p *rodPage) TypeInto(ctx context.Context, selector, text string) error {
	if err := p.guard("type", selector); err != nil {
		return err
	}
	el, done, err := p.element(ctx, selector)
	defer done()
	if err != nil {
		return p.fail("type", selector, err)
	}
	return p.fail("type", selector, el.Input(text))
}

func (p *rodPage) SetFieldValue(ctx context.Context, selector, text string) error {
	res, err := p.RunScript(ctx, setFieldValueScript, selector, text)
	if err != nil {
		return err
	}
	if !Truthy(res) {
		return &DriverError{Op: "set value", Target: selector, Err: fmt.Errorf("no element matches")}
	}
	return nil
}

func (p *rodPage) Click(ctx context.Context, selector string) error {
	if err := p.guard("click", selector); err != nil {
		return err
	}
	el, done, err := p.element(ctx, selector)
	defer done()
	if err != nil {
		return p.fail("click", selector, err)
	}
	return p.fail("click", selector, el.Click(proto.InputMouseButtonLeft, 1))
}

func (p *rodPage) Cookies(ctx context.Context) ([]Cookie, error) {
	if err := p.guard("cookies", ""); err != nil {
		return nil, err
	}
	raw, err := p.page.Context(ctx).Cookies(nil)
	if err != nil {
		return nil, p.fail("cookies", "", err)
	}
	cookies := make([]Cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
	}
	return cookies, nil
}

func (p *rodPage) RunScript(ctx context.Context, script Script, args ...any) (any, error) {
	if err := p.guard("script", script.Name); err != nil {
		return nil, err
	}
	res, err := p.page.Context(ctx).Evaluate(rod.Eval(script.Source, args...).ByPromise())
	if err != nil {
		return nil, p.fail("script", script.Name, err)
	}
	if res == nil {
		return nil, nil
	}
	return res.Value.Val(), nil
}

func (p *rodPage) PressKeyChord(ctx context.Context, mod Modifier, key string) error {
	target := string(mod) + "+" + key
	if err := p.guard("key chord", target); err != nil {
		return err
	}
	modKey, err := modifierKey(mod)
	if err != nil {
		return &DriverError{Op: "key chord", Target: target, Err: err}
	}
	k, err := namedKey(key)
	if err != nil {
		return &DriverError{Op: "key chord", Target: target, Err: err}
	}
	err = p.page.Context(ctx).KeyActions().Press(modKey).Type(k).Release(modKey).Do()
	return p.fail("key chord", target, err)
}

func (p *rodPage) CurrentURL() string {
	if p.closed.Load() {
		return ""
	}
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *rodPage) IsClosed() bool {
	if p.closed.Load() {
		return true
	}
	if _, err := p.page.Info(); err != nil {
		p.closed.Store(true)
		return true
	}
	return false
}

func (p *rodPage) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.page.Close()
}

type rodElement struct {
	el *rod.Element
}

func (e rodElement) Click(ctx context.Context) error {
	return driverErr("click element", "", e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1))
}

func modifierKey(mod Modifier) (input.Key, error) {
	switch mod {
	case ModifierControl:
		return input.ControlLeft, nil
	case ModifierMeta:
		return input.MetaLeft, nil
	case ModifierShift:
		return input.ShiftLeft, nil
	case ModifierAlt:
		return input.AltLeft, nil
	}
	return 0, fmt.Errorf("unknown modifier %q", mod)
}

func namedKey(key string) (input.Key, error) {
	switch strings.ToLower(key) {
	case "a":
		return input.KeyA, nil
	case "c":
		return input.KeyC, nil
	case "v":
		return input.KeyV, nil
	case "x":
		return input.KeyX, nil
	case "z":
		return input.KeyZ, nil
	case "enter":
		return input.Enter, nil
	case "end":
		return input.End, nil
	}
	return 0, fmt.Errorf("unsupported key %q", key)
}
