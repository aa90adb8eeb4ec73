package publisher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"crosspost/internal/article"
	"crosspost/internal/browser"
	"crosspost/internal/inject"
	"crosspost/internal/login"
)

// WechatEditorOpenScript is truthy once the operator has opened the article editor.
var WechatEditorOpenScript = browser.Script{
	Name:   "wechat.editorOpen",
	Source: `(editor) => location.href.includes('appmsg/index') || !!document.querySelector(editor)`,
}

// WechatPublisher copies styled HTML for the wechat editor and writes it as a draft
// file. The backend's navigation is left to the operator.
type WechatPublisher struct {
	deps      Deps
	sel       Selectors
	timings   Timings
	draftsDir string
	runID     string
}

// NewWechat creates the wechat publisher. Drafts are written under draftsDir.
func NewWechat(deps Deps, sel Selectors, timings Timings, draftsDir, runID string) *WechatPublisher {
	return &WechatPublisher{deps: deps, sel: sel, timings: timings, draftsDir: draftsDir, runID: runID}
}

func (p *WechatPublisher) Platform() Platform { return Wechat }

func (p *WechatPublisher) Publish(ctx context.Context, session browser.Session, art article.Article) Result {
	m := newMachine(Wechat, p.deps)
	m.status = StatusManualActionRequired
	var html string
	return m.execute(ctx, session, func() []step {
		return []step{
			m.openEditor(p.sel.EditorURL),
			m.awaitLogin(login.Probe{
				Selectors:  p.sel.Login,
				CookieName: p.sel.LoginCookie,
				Timeout:    p.timings.LoginTimeout,
			}),
			{state: StateEditorReady, name: "await editor", run: func(ctx context.Context) error {
				return p.awaitEditor(ctx, m)
			}},
			{state: StateEditorReady, name: "render html", run: func(ctx context.Context) error {
				var err error
				html, err = art.RenderStyledHTML()
				return err
			}},
			{state: StateContentInjected, name: "copy html", run: func(ctx context.Context) error {
				return m.injectContent(html, inject.Options{CopyOnly: true}).run(ctx)
			}},
			{state: StateContentInjected, name: "write draft", run: func(ctx context.Context) error {
				doc, err := art.RenderDocument()
				if err != nil {
					return err
				}
				path, err := p.writeDraft(art, doc)
				if err != nil {
					return err
				}
				m.artifact = path
				m.log.Info("draft written", zap.String("path", path))
				m.say("draft saved to %s", path)
				m.say("click into the body and press Ctrl+V / Cmd+V, then fill in title and cover")
				return nil
			}},
		}
	})
}

// awaitEditor waits without a deadline for the operator to open the editor.
func (p *WechatPublisher) awaitEditor(ctx context.Context, m *machine) error {
	m.warn("open 草稿箱 -> 新的创作 -> 写新图文 in the browser, waiting for the editor")
	err := m.page.WaitUntilTrue(ctx, WechatEditorOpenScript, 0, p.sel.Editor)
	if err != nil && (ctx.Err() != nil || errors.Is(err, context.Canceled)) {
		return fmt.Errorf("%w: %v", ErrLoginWaitCancelled, err)
	}
	return err
}

func (p *WechatPublisher) writeDraft(art article.Article, doc string) (string, error) {
	if p.draftsDir == "" {
		return "", errors.New("no drafts directory configured")
	}
	dir := filepath.Join(p.draftsDir, string(Wechat))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create drafts directory: %w", err)
	}
	suffix := ".html"
	if len(p.runID) >= 8 {
		suffix = "-" + p.runID[:8] + suffix
	}
	path := filepath.Join(dir, art.FileName(suffix))
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		return "", fmt.Errorf("failed to write draft: %w", err)
	}
	return path, nil
}
