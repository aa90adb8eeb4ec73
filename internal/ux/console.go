package ux

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Console writes timestamped, icon-prefixed progress lines.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	styles Styles
	now    func() time.Time
}

// NewConsole creates a console writing to out.
func NewConsole(out io.Writer, styles Styles) *Console {
	return &Console{out: out, styles: styles, now: time.Now}
}

func (c *Console) line(icon string, render func(...string) string, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.styles.Muted.Render("[" + c.now().Format("15:04:05") + "]")
	fmt.Fprintf(c.out, "%s %s %s\n", ts, icon, render(fmt.Sprintf(format, args...)))
}

func (c *Console) Info(format string, args ...any) {
	c.line("ℹ️", c.styles.Body.Render, format, args...)
}

func (c *Console) Success(format string, args ...any) {
	c.line("✅", c.styles.Success.Render, format, args...)
}

func (c *Console) Warn(format string, args ...any) {
	c.line("⚠️", c.styles.Warning.Render, format, args...)
}

func (c *Console) Error(format string, args ...any) {
	c.line("❌", c.styles.Error.Render, format, args...)
}

// Banner prints a boxed title.
func (c *Console) Banner(title string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bar := strings.Repeat("═", 40)
	fmt.Fprintf(c.out, "╔%s╗\n", bar)
	fmt.Fprintf(c.out, "  %s\n", c.styles.Title.Render(title))
	fmt.Fprintf(c.out, "╚%s╝\n\n", bar)
}

// Print writes s verbatim.
func (c *Console) Print(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprint(c.out, s)
}
