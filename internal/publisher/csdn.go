package publisher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crosspost/internal/article"
	"crosspost/internal/browser"
	"crosspost/internal/inject"
)

// CSDNEditorReturnedScript is truthy once the login redirect has come back to the editor.
var CSDNEditorReturnedScript = browser.Script{
	Name:   "csdn.editorReturned",
	Source: `() => location.href.includes('editor.csdn.net')`,
}

const csdnLoginHost = "passport.csdn.net"

// CSDNPublisher fills the CSDN Markdown editor and clicks its publish button.
type CSDNPublisher struct {
	deps    Deps
	sel     Selectors
	timings Timings
}

// NewCSDN creates the CSDN publisher.
func NewCSDN(deps Deps, sel Selectors, timings Timings) *CSDNPublisher {
	return &CSDNPublisher{deps: deps, sel: sel, timings: timings}
}

func (p *CSDNPublisher) Platform() Platform { return CSDN }

func (p *CSDNPublisher) Publish(ctx context.Context, session browser.Session, art article.Article) Result {
	m := newMachine(CSDN, p.deps)
	return m.execute(ctx, session, func() []step {
		return []step{
			m.openEditor(p.sel.EditorURL),
			{state: StateLoggingIn, name: "await login", run: func(ctx context.Context) error {
				return p.awaitLogin(ctx, m)
			}},
			m.awaitEditor(p.sel.Title, p.timings.ElementWait),
			m.fillTitle(p.sel.Title, art.Title(), p.timings.ElementWait),
			{state: StateTitleFilled, name: "focus editor", run: func(ctx context.Context) error {
				if err := m.page.Click(ctx, p.sel.EditorFocus); err != nil {
					return err
				}
				return wait(ctx, p.timings.FocusSettle)
			}},
			m.injectContent(art.Markdown(), inject.Options{ClipboardOnly: true, Settle: p.timings.PasteSettle}),
			{state: StateAwaitingAsyncProcessing, name: "await asset processing", run: func(ctx context.Context) error {
				return wait(ctx, p.timings.AssetSettle)
			}},
			{state: StatePublishPanelOpened, name: "open publish panel", run: func(ctx context.Context) error {
				if err := m.page.Click(ctx, p.sel.Publish); err != nil {
					return err
				}
				m.say("publish dialog opened, complete the category and publish")
				return nil
			}},
		}
	})
}

// awaitLogin waits without a deadline for the operator to finish the passport
// login. Only cancellation ends the wait early.
func (p *CSDNPublisher) awaitLogin(ctx context.Context, m *machine) error {
	if !strings.Contains(m.page.CurrentURL(), csdnLoginHost) {
		return nil
	}
	m.warn("login page detected, waiting for you to log in")
	err := m.page.WaitUntilTrue(ctx, CSDNEditorReturnedScript, 0)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", ErrLoginWaitCancelled, err)
		}
		return err
	}
	m.deps.Notify.Success("logged in to %s", CSDN.DisplayName())
	return nil
}
