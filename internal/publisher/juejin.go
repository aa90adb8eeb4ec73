package publisher

import (
	"context"

	"go.uber.org/zap"

	"crosspost/internal/article"
	"crosspost/internal/browser"
	"crosspost/internal/inject"
	"crosspost/internal/login"
)

// ScrollToBottomScript scrolls the page and the preview pane so lazy images load.
var ScrollToBottomScript = browser.Script{
	Name: "juejin.scrollToBottom",
	Source: `() => {
	window.scrollTo(0, document.body.scrollHeight);
	const preview = document.querySelector('.bytemd-preview');
	if (preview) preview.scrollTop = preview.scrollHeight;
	return true;
}`,
}

// JuejinPublisher fills the juejin Markdown editor and opens its publish panel.
type JuejinPublisher struct {
	deps    Deps
	sel     Selectors
	timings Timings
}

// NewJuejin creates the juejin publisher.
func NewJuejin(deps Deps, sel Selectors, timings Timings) *JuejinPublisher {
	return &JuejinPublisher{deps: deps, sel: sel, timings: timings}
}

func (p *JuejinPublisher) Platform() Platform { return Juejin }

func (p *JuejinPublisher) Publish(ctx context.Context, session browser.Session, art article.Article) Result {
	m := newMachine(Juejin, p.deps)
	return m.execute(ctx, session, func() []step {
		return []step{
			m.openEditor(p.sel.EditorURL),
			m.awaitLogin(login.Probe{
				Selectors:  p.sel.Login,
				CookieName: p.sel.LoginCookie,
				Timeout:    p.timings.LoginTimeout,
			}),
			m.awaitEditor(p.sel.Editor, p.timings.ElementWait),
			m.fillTitle(p.sel.Title, art.Title(), p.timings.ElementWait),
			{state: StateTitleFilled, name: "focus editor", run: func(ctx context.Context) error {
				return p.focusEditor(ctx, m)
			}},
			m.injectContent(art.Markdown(), inject.Options{Settle: p.timings.PasteSettle}),
			{state: StateAwaitingAsyncProcessing, name: "await asset processing", run: func(ctx context.Context) error {
				return p.settleAssets(ctx, m)
			}},
			{state: StatePublishPanelOpened, name: "open publish panel", run: func(ctx context.Context) error {
				return p.openPublishPanel(ctx, m)
			}},
		}
	})
}

// focusEditor clicks the CodeMirror surface, falling back to the editor container.
func (p *JuejinPublisher) focusEditor(ctx context.Context, m *machine) error {
	err := m.page.WaitFor(ctx, p.sel.EditorFocus, p.timings.FocusWait)
	if err == nil {
		err = m.page.Click(ctx, p.sel.EditorFocus)
	}
	if err != nil {
		if browser.IsPageClosed(err) {
			return err
		}
		m.log.Info("precise editor surface not found, clicking container", zap.Error(err))
		if err := m.page.Click(ctx, p.sel.Editor); err != nil {
			return err
		}
	}
	return wait(ctx, p.timings.FocusSettle)
}

// settleAssets gives the editor time to re-host images, then scrolls to trigger
// lazy loading in the preview.
func (p *JuejinPublisher) settleAssets(ctx context.Context, m *machine) error {
	m.say("waiting for images and preview")
	if err := wait(ctx, p.timings.AssetSettle); err != nil {
		return err
	}
	if _, err := m.page.RunScript(ctx, ScrollToBottomScript); err != nil {
		if browser.IsPageClosed(err) {
			return err
		}
		m.log.Warn("scroll failed", zap.Error(err))
	}
	return wait(ctx, p.timings.ScrollSettle)
}

func (p *JuejinPublisher) openPublishPanel(ctx context.Context, m *machine) error {
	buttons, err := m.page.QueryAll(ctx, p.sel.Publish)
	if err != nil {
		return err
	}
	if len(buttons) == 0 {
		m.warn("publish button not found, click it manually")
		return nil
	}
	if err := buttons[0].Click(ctx); err != nil {
		return err
	}
	m.say("publish panel opened, pick category and tags then confirm")
	return nil
}
