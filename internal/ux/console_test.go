package ux

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedConsole(buf *bytes.Buffer) *Console {
	c := NewConsole(buf, PlainStyles())
	c.now = func() time.Time { return time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC) }
	return c
}

func TestConsole_Lines(t *testing.T) {
	var buf bytes.Buffer
	c := fixedConsole(&buf)

	c.Info("opening %s", "https://juejin.cn")
	c.Success("logged in")
	c.Warn("login not detected")
	c.Error("csdn failed: %v", "boom")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"[15:04:05] ℹ️ opening https://juejin.cn",
		"[15:04:05] ✅ logged in",
		"[15:04:05] ⚠️ login not detected",
		"[15:04:05] ❌ csdn failed: boom",
	}, lines)
}

func TestConsole_Banner(t *testing.T) {
	var buf bytes.Buffer
	fixedConsole(&buf).Banner("crosspost")
	out := buf.String()
	assert.Contains(t, out, "╔")
	assert.Contains(t, out, "  crosspost\n")
}

func TestRecorder(t *testing.T) {
	var n Notifier = &Recorder{}
	n.Info("a %d", 1)
	n.Warn("b")
	n.Warn("c")

	r := n.(*Recorder)
	assert.Equal(t, []Message{
		{Level: LevelInfo, Text: "a 1"},
		{Level: LevelWarn, Text: "b"},
		{Level: LevelWarn, Text: "c"},
	}, r.Messages())
	assert.Equal(t, 2, r.Count(LevelWarn))
	assert.Zero(t, r.Count(LevelError))
}
