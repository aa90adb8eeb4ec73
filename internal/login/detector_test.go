package login

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"crosspost/internal/browser"
	"crosspost/internal/ux"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fastDetector(notify ux.Notifier) *Detector {
	return NewDetector(nil, notify, WithInterval(5*time.Millisecond), WithRemindEvery(10))
}

func TestProbe_Validate(t *testing.T) {
	assert.ErrorIs(t, Probe{}.Validate(), ErrEmptyProbe)
	assert.NoError(t, Probe{Selectors: []string{".avatar"}}.Validate())
	assert.NoError(t, Probe{CookieName: "sessionid"}.Validate())
}

func TestAwait_SelectorPresentSucceedsFirstAttempt(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.MissingAll(".user-avatar")

	out, err := fastDetector(nil).Await(context.Background(), page, Probe{
		Selectors: []string{".avatar", ".user-avatar"},
		Timeout:   time.Second,
	})
	require.NoError(t, err)
	assert.True(t, out.Detected)
	assert.Equal(t, ".user-avatar", out.Signal)
	assert.Equal(t, 1, out.Attempts)
	assert.Empty(t, page.CallsOf("cookies"), "cookie is only checked after all selectors miss")
}

func TestAwait_CookieSignal(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.MissingAll()
	page.SetCookies(browser.Cookie{Name: "sessionid", Value: "abc"})

	out, err := fastDetector(nil).Await(context.Background(), page, Probe{
		Selectors:  []string{".avatar"},
		CookieName: "sessionid",
		Timeout:    time.Second,
	})
	require.NoError(t, err)
	assert.True(t, out.Detected)
	assert.Equal(t, "cookie:sessionid", out.Signal)
}

func TestAwait_CookiePresenceIsEnough(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.SetCookies(browser.Cookie{Name: "sessionid"})

	out, err := fastDetector(nil).Await(context.Background(), page, Probe{
		CookieName: "sessionid",
		Timeout:    time.Second,
	})
	require.NoError(t, err)
	assert.True(t, out.Detected)
	assert.Equal(t, "cookie:sessionid", out.Signal)
	assert.Equal(t, 1, out.Attempts)
}

func TestAwait_EmptyProbeTimesOutOptimistically(t *testing.T) {
	rec := &ux.Recorder{}
	page := browser.NewSimPage(nil)

	start := time.Now()
	out, err := fastDetector(rec).Await(context.Background(), page, Probe{Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	assert.False(t, out.Detected)
	assert.Equal(t, 10, out.Attempts)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, rec.Count(ux.LevelWarn))
	assert.Equal(t, 1, rec.Count(ux.LevelInfo)-1, "one reminder after ten attempts")
}

func TestAwait_RemindsEveryTenAttempts(t *testing.T) {
	rec := &ux.Recorder{}
	page := browser.NewSimPage(nil)
	page.MissingAll()

	_, err := fastDetector(rec).Await(context.Background(), page, Probe{
		Selectors: []string{".avatar"},
		Timeout:   125 * time.Millisecond, // 25 attempts
	})
	require.NoError(t, err)

	reminders := 0
	for _, m := range rec.Messages() {
		if m.Level == ux.LevelInfo && m.Text != "checking login state..." {
			reminders++
		}
	}
	assert.Equal(t, 2, reminders)
}

func TestAwait_ClosedPageIsDriverError(t *testing.T) {
	page := browser.NewSimPage(nil)
	require.NoError(t, page.Close())

	_, err := fastDetector(nil).Await(context.Background(), page, Probe{Selectors: []string{".avatar"}, Timeout: time.Second})

	var derr *browser.DriverError
	require.True(t, errors.As(err, &derr))
	assert.True(t, browser.IsPageClosed(err))
}

func TestAwait_LookupErrorsCountAsAbsent(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.FailOp("exists", errors.New("node detached"))

	out, err := fastDetector(nil).Await(context.Background(), page, Probe{
		Selectors: []string{".avatar"},
		Timeout:   15 * time.Millisecond,
	})
	require.NoError(t, err)
	assert.False(t, out.Detected)
}

func TestAwait_ContextCancelled(t *testing.T) {
	page := browser.NewSimPage(nil)
	page.MissingAll()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := NewDetector(nil, nil, WithInterval(5*time.Millisecond)).Await(ctx, page, Probe{
		Selectors: []string{".avatar"},
		Timeout:   time.Hour,
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMaxAttempts(t *testing.T) {
	d := NewDetector(nil, nil)
	assert.Equal(t, 120, d.maxAttempts(120*time.Second))
	assert.Equal(t, 3, d.maxAttempts(2500*time.Millisecond))
	assert.Equal(t, 120, d.maxAttempts(0))
}
