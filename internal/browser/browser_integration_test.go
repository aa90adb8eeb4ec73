//go:build integration

package browser_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"crosspost/internal/browser"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const editorPage = `<html><body>
<input class="title-input" value="old">
<div class="editor" contenteditable="true"></div>
<button class="btn-publish" onclick="document.body.dataset.published='1'">发布</button>
</body></html>`

func startEditor(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "integration"})
		fmt.Fprint(w, editorPage)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func launch(t *testing.T) browser.Session {
	t.Helper()
	cfg := browser.DefaultConfig()
	cfg.Headless = true
	cfg.ProfileDir = t.TempDir()
	cfg.NavigationTimeoutMs = 15000

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	t.Cleanup(cancel)

	sess, err := browser.NewSessionManager(cfg, zap.NewNop()).Launch(ctx)
	require.NoError(t, err, "Failed to start browser")
	t.Cleanup(func() {
		if err := sess.Close(); err != nil {
			t.Logf("Close error: %v", err)
		}
	})
	return sess
}

func TestRodPage_EditorRoundTrip_Integration(t *testing.T) {
	ts := startEditor(t)
	sess := launch(t)
	ctx := context.Background()

	page, err := sess.NewPage(ctx)
	require.NoError(t, err)
	require.NoError(t, page.Open(ctx, ts.URL))
	require.Equal(t, ts.URL+"/", page.CurrentURL())

	ok, err := page.Exists(ctx, ".title-input")
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, page.SetFieldValue(ctx, ".title-input", ""))
	require.NoError(t, page.TypeInto(ctx, ".title-input", "Hello"))
	v, err := page.RunScript(ctx, browser.Script{Name: "title", Source: `() => document.querySelector('.title-input').value`})
	require.NoError(t, err)
	require.Equal(t, "Hello", v)

	cookies, err := page.Cookies(ctx)
	require.NoError(t, err)
	found := false
	for _, c := range cookies {
		if c.Name == "sessionid" {
			found = true
		}
	}
	require.True(t, found, "expected sessionid cookie, got %v", cookies)

	buttons, err := page.QueryAll(ctx, browser.XPathPrefix+"//button[contains(., '发布')]")
	require.NoError(t, err)
	require.Len(t, buttons, 1)
	require.NoError(t, buttons[0].Click(ctx))
	require.NoError(t, page.WaitUntilTrue(ctx, browser.Script{
		Name:   "published",
		Source: `() => document.body.dataset.published === '1'`,
	}, 5*time.Second))

	require.NoError(t, page.Click(ctx, ".editor"))
	require.NoError(t, page.PressKeyChord(ctx, browser.HostModifier(), "a"))

	require.NoError(t, page.Close())
	require.True(t, page.IsClosed())
	_, err = page.Exists(ctx, ".title-input")
	require.True(t, browser.IsPageClosed(err))
}
