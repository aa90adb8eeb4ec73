package publisher

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"crosspost/internal/article"
	"crosspost/internal/inject"
	"crosspost/internal/login"
	"crosspost/internal/ux"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type memClipboard struct {
	mu     sync.Mutex
	writes []string
}

func (c *memClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, text)
	return nil
}

func sampleArticle() article.Article {
	return article.New("测试文章标题", "# 测试文章\n\n这是测试内容。", "测试", "自动化")
}

func fastTiming() Timings {
	return Timings{
		LoginTimeout: 50 * time.Millisecond,
		ElementWait:  100 * time.Millisecond,
		FocusWait:    10 * time.Millisecond,
	}
}

func fastTimings() map[Platform]Timings {
	return map[Platform]Timings{Juejin: fastTiming(), CSDN: fastTiming(), Wechat: fastTiming()}
}

func testDeps(notify ux.Notifier) Deps {
	if notify == nil {
		notify = ux.Nop{}
	}
	return Deps{
		Notify:   notify,
		Login:    login.NewDetector(nil, notify, login.WithInterval(5*time.Millisecond)),
		Injector: inject.New(nil, notify, inject.WithClipboard(&memClipboard{}), inject.WithGOOS("linux")),
	}
}
