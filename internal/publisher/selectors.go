package publisher

import (
	"strings"
	"time"

	"crosspost/internal/config"
)

// Selectors is the per-platform page knowledge. Sites change their markup often,
// so every entry can be overridden from the config file.
type Selectors struct {
	EditorURL   string
	Login       []string
	LoginCookie string
	Title       string
	Editor      string // container that signals the editor has loaded
	EditorFocus string // the surface that should receive the content
	Publish     string // CSS selector, or XPath with browser.XPathPrefix
}

// DefaultSelectors returns the built-in selectors for p.
func DefaultSelectors(p Platform) Selectors {
	switch p {
	case Juejin:
		return Selectors{
			EditorURL: "https://juejin.cn/editor/drafts/new",
			Login: []string{
				".avatar",
				".user-avatar",
				`img[src*="avatar"]`,
				".user-dropdown",
				".nav-item.auth",
				".username",
				".user-menu",
			},
			LoginCookie: "sessionid",
			Title:       ".title-input",
			Editor:      ".bytemd-editor",
			EditorFocus: ".CodeMirror-scroll, .bytemd-editor .cm-content, .bytemd-editor textarea",
			Publish:     "xpath///button[contains(., '发布')]",
		}
	case CSDN:
		return Selectors{
			EditorURL:   "https://editor.csdn.net/md/",
			Title:       ".article-bar__title",
			EditorFocus: "pre",
			Publish:     ".btn-publish",
		}
	case Wechat:
		return Selectors{
			EditorURL: "https://mp.weixin.qq.com/",
			Login:     []string{".weui-desktop-account__name"},
			Editor:    "#ueditor_0",
		}
	default:
		return Selectors{}
	}
}

// Override applies the non-empty config values. Selector keys are login (comma
// separated), login_cookie, title, editor, editor_focus and publish.
func (s Selectors) Override(pc config.PlatformConfig) Selectors {
	out := s
	out.Login = append([]string(nil), s.Login...)
	if pc.EditorURL != "" {
		out.EditorURL = pc.EditorURL
	}
	for key, v := range pc.Selectors {
		if v == "" {
			continue
		}
		switch key {
		case "login":
			out.Login = nil
			for _, sel := range strings.Split(v, ",") {
				if sel = strings.TrimSpace(sel); sel != "" {
					out.Login = append(out.Login, sel)
				}
			}
		case "login_cookie":
			out.LoginCookie = v
		case "title":
			out.Title = v
		case "editor":
			out.Editor = v
		case "editor_focus":
			out.EditorFocus = v
		case "publish":
			out.Publish = v
		}
	}
	return out
}

// Timings are the fixed waits in a publisher. They are guesses about how long a
// site needs and the usual source of flakiness, hence configurable.
type Timings struct {
	LoginTimeout time.Duration
	ElementWait  time.Duration // waiting for title/editor elements
	FocusWait    time.Duration // waiting for the precise editor surface
	FocusSettle  time.Duration // after clicking into the editor
	PasteSettle  time.Duration // between clipboard write and paste chord
	AssetSettle  time.Duration // after injection, for image re-hosting and preview
	ScrollSettle time.Duration // after scrolling to trigger lazy loading
}

// DefaultTimings returns the built-in waits for p.
func DefaultTimings(p Platform) Timings {
	t := Timings{
		LoginTimeout: 120 * time.Second,
		ElementWait:  30 * time.Second,
		FocusWait:    5 * time.Second,
		FocusSettle:  500 * time.Millisecond,
		PasteSettle:  500 * time.Millisecond,
	}
	switch p {
	case Juejin:
		t.AssetSettle = 5 * time.Second
		t.ScrollSettle = 2 * time.Second
	case CSDN:
		t.PasteSettle = time.Second
	}
	return t
}

// WithConfig applies the config's login timeout and the platform's settle override.
func (t Timings) WithConfig(cfg *config.Config, p Platform) Timings {
	out := t
	out.LoginTimeout = cfg.GetLoginTimeout()
	out.AssetSettle = cfg.Platform(string(p)).GetSettle(t.AssetSettle)
	return out
}
