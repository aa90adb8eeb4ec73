package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedLauncher_LaunchAndClose(t *testing.T) {
	l := NewSimulatedLauncher(nil)
	sess, err := l.Launch(context.Background())
	require.NoError(t, err)
	require.True(t, sess.Simulated())

	page, err := sess.NewPage(context.Background())
	require.NoError(t, err)
	require.NotNil(t, page)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	_, err = sess.NewPage(context.Background())
	assert.True(t, IsPageClosed(err))
}

func TestSimulatedLauncher_FailWith(t *testing.T) {
	l := NewSimulatedLauncher(nil)
	l.FailWith = errors.New("no chrome")
	_, err := l.Launch(context.Background())
	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
}

func TestSimulatedLauncher_ConfigureAppliesToPages(t *testing.T) {
	l := NewSimulatedLauncher(nil)
	l.Configure = func(p *SimPage) { p.SetMissing(".avatar") }
	sess, err := l.Launch(context.Background())
	require.NoError(t, err)

	page, err := sess.NewPage(context.Background())
	require.NoError(t, err)
	ok, err := page.Exists(context.Background(), ".avatar")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSimPage_DefaultsSatisfyEverything(t *testing.T) {
	ctx := context.Background()
	p := NewSimPage(nil)

	require.NoError(t, p.Open(ctx, "https://example.com/editor"))
	assert.Equal(t, "https://example.com/editor", p.CurrentURL())

	ok, err := p.Exists(ctx, ".anything")
	require.NoError(t, err)
	assert.True(t, ok)

	els, err := p.QueryAll(ctx, "xpath///button")
	require.NoError(t, err)
	require.Len(t, els, 1)
	require.NoError(t, els[0].Click(ctx))

	require.NoError(t, p.WaitFor(ctx, ".title", time.Second))
	require.NoError(t, p.WaitUntilTrue(ctx, Script{Name: "ready"}, 0))

	v, err := p.RunScript(ctx, Script{Name: "unknown"}, "x")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, p.PressKeyChord(ctx, ModifierControl, "v"))

	want := []string{"open", "exists", "query all", "click element", "wait for", "wait", "script", "key chord"}
	if diff := cmp.Diff(want, p.Ops()); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Control+V", p.CallsOf("key chord")[0].Target)
}

func TestSimPage_MissingSelectors(t *testing.T) {
	ctx := context.Background()
	p := NewSimPage(nil)
	p.SetMissing(".gone")

	ok, err := p.Exists(ctx, ".gone")
	require.NoError(t, err)
	assert.False(t, ok)

	err = p.Click(ctx, ".gone")
	var derr *DriverError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, ".gone", derr.Target)

	p.MissingAll(".only")
	ok, _ = p.Exists(ctx, ".only")
	assert.True(t, ok)
	ok, _ = p.Exists(ctx, ".other")
	assert.False(t, ok)
}

func TestSimPage_ClosedPageFails(t *testing.T) {
	ctx := context.Background()
	p := NewSimPage(nil)
	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())

	err := p.Open(ctx, "https://example.com")
	require.Error(t, err)
	assert.True(t, IsPageClosed(err))
}

func TestSimPage_RedirectAndCookies(t *testing.T) {
	ctx := context.Background()
	p := NewSimPage(nil)
	p.RedirectTo("https://passport.example.com/login")
	p.SetCookies(Cookie{Name: "sessionid", Value: "abc"})

	require.NoError(t, p.Open(ctx, "https://editor.example.com/md/"))
	assert.Equal(t, "https://passport.example.com/login", p.CurrentURL())

	require.NoError(t, p.Open(ctx, "https://editor.example.com/md/"))
	assert.Equal(t, "https://editor.example.com/md/", p.CurrentURL())

	cookies, err := p.Cookies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Cookie{{Name: "sessionid", Value: "abc"}}, cookies)
}

func TestSimPage_WaitUntilTrueHonoursHandlerAndCancellation(t *testing.T) {
	p := NewSimPage(nil)
	calls := 0
	p.HandleScript("eventually", func(args []any) (any, error) {
		calls++
		return calls >= 3, nil
	})
	require.NoError(t, p.WaitUntilTrue(context.Background(), Script{Name: "eventually"}, time.Second))
	assert.Equal(t, 3, calls)

	p.HandleScript("never", func(args []any) (any, error) { return false, nil })
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := p.WaitUntilTrue(ctx, Script{Name: "never"}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	err = p.WaitUntilTrue(context.Background(), Script{Name: "never"}, 30*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSimPage_FailOp(t *testing.T) {
	p := NewSimPage(nil)
	p.FailOp("script", errors.New("navigation in flight"))
	_, err := p.RunScript(context.Background(), Script{Name: "x"})
	var derr *DriverError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, "script", derr.Op)
}
