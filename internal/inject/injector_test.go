package inject

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"crosspost/internal/browser"
	"crosspost/internal/ux"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeClipboard struct {
	writes []string
	err    error
}

func (c *fakeClipboard) WriteAll(text string) error {
	if c.err != nil {
		return c.err
	}
	c.writes = append(c.writes, text)
	return nil
}

const sample = "# 测试文章\n\n这是测试内容。"

func accept(v any) browser.ScriptHandler {
	return func([]any) (any, error) { return v, nil }
}

func TestInject_TierOneSkipsClipboard(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.HandleScript(InsertTextScript.Name, accept(true))
	clip := &fakeClipboard{}

	res, err := New(nil, nil, WithClipboard(clip)).Inject(context.Background(), page, sample, Options{})
	require.NoError(t, err)

	assert.Equal(t, TierInsertText, res.Tier)
	assert.Empty(t, page.CallsOf("key chord"))
	assert.Empty(t, clip.writes)
	scripts := page.CallsOf("script")
	require.Len(t, scripts, 1)
	assert.Equal(t, InsertTextScript.Name, scripts[0].Target)
	assert.Equal(t, []any{sample}, scripts[0].Args)
}

func TestInject_TierTwoPastesOnceWithHostModifier(t *testing.T) {
	tests := []struct {
		goos  string
		chord string
	}{
		{"darwin", "Meta+V"},
		{"linux", "Control+V"},
		{"windows", "Control+V"},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			page := browser.NewSimPage(nil)
			page.HandleScript(InsertTextScript.Name, accept(false))
			var written []any
			page.HandleScript(ClipboardWriteScript.Name, func(args []any) (any, error) {
				written = args
				return true, nil
			})

			start := time.Now()
			res, err := New(nil, nil, WithGOOS(tt.goos)).Inject(context.Background(), page, sample, Options{})
			require.NoError(t, err)

			assert.Equal(t, TierClipboard, res.Tier)
			assert.True(t, res.Copied)
			assert.GreaterOrEqual(t, time.Since(start), MinSettle)
			if diff := cmp.Diff([]any{sample}, written); diff != "" {
				t.Errorf("clipboard text mismatch (-want +got):\n%s", diff)
			}
			chords := page.CallsOf("key chord")
			require.Len(t, chords, 1)
			assert.Equal(t, tt.chord, chords[0].Target)
		})
	}
}

func TestInject_HostClipboardFallback(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.HandleScript(ClipboardWriteScript.Name, func([]any) (any, error) {
		return nil, errors.New("permission denied")
	})
	clip := &fakeClipboard{}

	res, err := New(nil, nil, WithClipboard(clip), WithGOOS("linux")).
		Inject(context.Background(), page, sample, Options{ClipboardOnly: true})
	require.NoError(t, err)

	assert.Equal(t, TierClipboard, res.Tier)
	assert.Equal(t, []string{sample}, clip.writes)
	assert.Len(t, page.CallsOf("key chord"), 1)
	for _, c := range page.CallsOf("script") {
		assert.NotEqual(t, InsertTextScript.Name, c.Target, "clipboard-only must not try insert-text")
	}
}

func TestInject_BothTiersFailIsSoft(t *testing.T) {
	rec := &ux.Recorder{}
	page := browser.NewSimPage(nil)
	clip := &fakeClipboard{err: errors.New("no xclip")}

	_, err := New(nil, rec, WithClipboard(clip)).Inject(context.Background(), page, sample, Options{})

	require.ErrorIs(t, err, ErrInjectionFailed)
	assert.False(t, browser.IsPageClosed(err))
	assert.Empty(t, page.CallsOf("key chord"))
	assert.Equal(t, 1, rec.Count(ux.LevelWarn))
}

func TestInject_CopyOnlyNeverPastes(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.HandleScript(ClipboardWriteScript.Name, accept(true))

	res, err := New(nil, nil).Inject(context.Background(), page, "<p>hi</p>", Options{CopyOnly: true})
	require.NoError(t, err)

	assert.True(t, res.Copied)
	assert.Empty(t, page.CallsOf("key chord"))
}

func TestInject_ClosedPageIsHard(t *testing.T) {
	page := browser.NewSimPage(nil)
	require.NoError(t, page.Close())

	_, err := New(nil, nil).Inject(context.Background(), page, sample, Options{})

	assert.True(t, browser.IsPageClosed(err))
	assert.NotErrorIs(t, err, ErrInjectionFailed)
}

func TestInject_CancelledDuringSettle(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.HandleScript(ClipboardWriteScript.Name, accept(true))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(nil, nil).Inject(ctx, page, sample, Options{ClipboardOnly: true, Settle: time.Minute})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, page.CallsOf("key chord"))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "insert-text", TierInsertText.String())
	assert.Equal(t, "clipboard", TierClipboard.String())
	assert.Equal(t, "none", TierNone.String())
}
