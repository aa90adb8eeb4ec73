package ux

import (
	"fmt"
	"sync"
)

// Notifier receives operator-facing progress messages.
type Notifier interface {
	Info(format string, args ...any)
	Success(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Nop discards every message.
type Nop struct{}

func (Nop) Info(string, ...any)    {}
func (Nop) Success(string, ...any) {}
func (Nop) Warn(string, ...any)    {}
func (Nop) Error(string, ...any)   {}

// Level tags a recorded message.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarn    Level = "warn"
	LevelError   Level = "error"
)

// Message is one recorded notification.
type Message struct {
	Level Level
	Text  string
}

// Recorder keeps messages in memory. Safe for concurrent use.
type Recorder struct {
	mu   sync.Mutex
	msgs []Message
}

func (r *Recorder) add(level Level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

func (r *Recorder) Info(format string, args ...any)    { r.add(LevelInfo, format, args...) }
func (r *Recorder) Success(format string, args ...any) { r.add(LevelSuccess, format, args...) }
func (r *Recorder) Warn(format string, args ...any)    { r.add(LevelWarn, format, args...) }
func (r *Recorder) Error(format string, args ...any)   { r.add(LevelError, format, args...) }

// Messages returns a copy of everything recorded.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Count returns how many messages were recorded at level.
func (r *Recorder) Count(level Level) int {
	n := 0
	for _, m := range r.Messages() {
		if m.Level == level {
			n++
		}
	}
	return n
}
