// Package inject puts article text into a platform's editor.
//
// Tier 1 runs the browser's insert-text command in the focused editor. When that
// is refused, tier 2 writes the text to the clipboard and presses a single paste
// chord. Rich editors that mangle typed Markdown usually accept one of the two.
package inject

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"crosspost/internal/browser"
	"crosspost/internal/ux"
)

// MinSettle is the shortest pause between the clipboard write and the paste chord.
const MinSettle = 500 * time.Millisecond

// ErrInjectionFailed means neither tier got the text in. The publisher continues and
// the operator pastes by hand.
var ErrInjectionFailed = errors.New("content injection failed")

// Tier identifies which strategy delivered the text.
type Tier int

const (
	TierNone Tier = iota
	TierInsertText
	TierClipboard
)

func (t Tier) String() string {
	switch t {
	case TierInsertText:
		return "insert-text"
	case TierClipboard:
		return "clipboard"
	default:
		return "none"
	}
}

// Scripts run in page context.
var (
	InsertTextScript = browser.Script{
		Name: "inject.insertText",
		Source: `(text) => {
	let el = document.activeElement;
	if (!el || el === document.body) {
		el = document.querySelector('.CodeMirror textarea, .cm-content, [contenteditable="true"], textarea');
		if (el) el.focus();
	}
	if (!el || el === document.body) return false;
	return document.execCommand('insertText', false, text);
}`,
	}
	ClipboardWriteScript = browser.Script{
		Name: "inject.clipboardWrite",
		Source: `async (text) => {
	await navigator.clipboard.writeText(text);
	return true;
}`,
	}
)

// Clipboard is the host clipboard.
type Clipboard interface {
	WriteAll(text string) error
}

// HostClipboard writes to the operating system clipboard.
type HostClipboard struct{}

// WriteAll copies text to the system clipboard.
func (HostClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

// Options tune one injection.
type Options struct {
	// ClipboardOnly skips tier 1.
	ClipboardOnly bool
	// Settle is the pause before the paste chord; values below MinSettle are raised.
	Settle time.Duration
	// CopyOnly stops after the clipboard write and never pastes.
	CopyOnly bool
}

// Result reports what happened.
type Result struct {
	Tier   Tier
	Copied bool // text is on a clipboard
}

// Injector delivers text into the focused editor of a page.
type Injector struct {
	log       *zap.Logger
	notify    ux.Notifier
	clipboard Clipboard
	goos      string
}

// Option configures an Injector.
type Option func(*Injector)

// WithClipboard replaces the host clipboard.
func WithClipboard(c Clipboard) Option {
	return func(i *Injector) { i.clipboard = c }
}

// WithGOOS picks the paste modifier as if running on goos.
func WithGOOS(goos string) Option {
	return func(i *Injector) { i.goos = goos }
}

// New creates an injector.
func New(logger *zap.Logger, notify ux.Notifier, opts ...Option) *Injector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notify == nil {
		notify = ux.Nop{}
	}
	i := &Injector{
		log:       logger,
		notify:    notify,
		clipboard: HostClipboard{},
		goos:      runtime.GOOS,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inject delivers text. It returns ErrInjectionFailed when every tier was refused
// and a *browser.DriverError when the page is gone.
func (i *Injector) Inject(ctx context.Context, page browser.Page, text string, opts Options) (Result, error) {
	if page.IsClosed() {
		return Result{}, &browser.DriverError{Op: "inject", Err: browser.ErrPageClosed}
	}

	if !opts.ClipboardOnly && !opts.CopyOnly {
		ok, err := i.insertText(ctx, page, text)
		if err != nil {
			return Result{}, err
		}
		if ok {
			i.log.Debug("content inserted", zap.Stringer("tier", TierInsertText), zap.Int("chars", len(text)))
			return Result{Tier: TierInsertText}, nil
		}
		i.log.Info("insert-text refused, falling back to clipboard")
	}

	if err := i.copy(ctx, page, text); err != nil {
		if browser.IsPageClosed(err) {
			return Result{}, err
		}
		i.log.Warn("clipboard write failed", zap.Error(err))
		i.notify.Warn("could not copy the article, paste it manually")
		return Result{}, fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}
	if opts.CopyOnly {
		i.notify.Info("article copied to clipboard")
		return Result{Tier: TierClipboard, Copied: true}, nil
	}

	settle := opts.Settle
	if settle < MinSettle {
		settle = MinSettle
	}
	if err := sleep(ctx, settle); err != nil {
		return Result{Copied: true}, err
	}

	mod := browser.PrimaryModifier(i.goos)
	if err := page.PressKeyChord(ctx, mod, "v"); err != nil {
		if browser.IsPageClosed(err) {
			return Result{Copied: true}, err
		}
		i.log.Warn("paste chord failed", zap.Error(err))
		i.notify.Warn("paste failed, the article is on the clipboard")
		return Result{Copied: true}, fmt.Errorf("%w: %v", ErrInjectionFailed, err)
	}
	i.log.Debug("content pasted", zap.Stringer("tier", TierClipboard), zap.String("modifier", string(mod)))
	return Result{Tier: TierClipboard, Copied: true}, nil
}

// insertText reports whether the page accepted the insert-text command. Script
// failures other than a closed page are a refusal.
func (i *Injector) insertText(ctx context.Context, page browser.Page, text string) (bool, error) {
	v, err := page.RunScript(ctx, InsertTextScript, text)
	if err != nil {
		if browser.IsPageClosed(err) {
			return false, err
		}
		i.log.Debug("insert-text script failed", zap.Error(err))
		return false, nil
	}
	return browser.Truthy(v), nil
}

// copy writes text to the page clipboard, falling back to the host clipboard.
func (i *Injector) copy(ctx context.Context, page browser.Page, text string) error {
	v, err := page.RunScript(ctx, ClipboardWriteScript, text)
	if err == nil && browser.Truthy(v) {
		return nil
	}
	if err != nil && browser.IsPageClosed(err) {
		return err
	}
	i.log.Debug("page clipboard write refused, using host clipboard", zap.Error(err))
	if herr := i.clipboard.WriteAll(text); herr != nil {
		return fmt.Errorf("host clipboard: %w", herr)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
