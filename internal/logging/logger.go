// Package logging provides categorized zap loggers for crosspost.
// Every category writes through the caller's console logger. When debug_mode is on,
// each enabled category is also teed into its own file under the logs directory.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // CLI startup, config loading
	CategoryBrowser Category = "browser" // Launch, pages, driver calls
	CategoryLogin   Category = "login"   // Login detection polling
	CategoryInject  Category = "inject"  // Content injection tiers
	CategoryPublish Category = "publish" // Publisher state machines, orchestration
	CategoryArticle Category = "article" // Article parsing and rendering
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	DebugMode  bool
	Level      string
	Dir        string
	JSONFormat bool
	Categories map[string]bool
}

// IsCategoryEnabled returns whether file logging is on for a category.
// Returns false if debug_mode is false.
func (o Options) IsCategoryEnabled(cat Category) bool {
	if !o.DebugMode {
		return false
	}
	if o.Categories == nil {
		return true
	}
	enabled, exists := o.Categories[string(cat)]
	if !exists {
		return true
	}
	return enabled
}

// Loggers hands out one named logger per category.
type Loggers struct {
	console *zap.Logger
	opts    Options
	level   zapcore.Level

	mu      sync.Mutex
	loggers map[Category]*zap.Logger
	files   []*os.File
}

// New builds the category factory on top of console. A nil console means no console output.
func New(console *zap.Logger, opts Options) (*Loggers, error) {
	if console == nil {
		console = zap.NewNop()
	}
	level := zapcore.InfoLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}
	if opts.DebugMode {
		if opts.Dir == "" {
			return nil, fmt.Errorf("debug_mode requires a logs directory")
		}
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}
	}
	return &Loggers{
		console: console,
		opts:    opts,
		level:   level,
		loggers: make(map[Category]*zap.Logger),
	}, nil
}

// Nop returns a factory whose loggers discard everything.
func Nop() *Loggers {
	l, _ := New(zap.NewNop(), Options{})
	return l
}

// Get returns the logger for cat, creating its file sink on first use.
func (l *Loggers) Get(cat Category) *zap.Logger {
	l.mu.Lock()
	defer l.mu.Unlock()

	if lg, ok := l.loggers[cat]; ok {
		return lg
	}

	lg := l.console.Named(string(cat))
	if l.opts.IsCategoryEnabled(cat) {
		fileCore, err := l.openFileCore(cat)
		if err != nil {
			lg.Warn("category file sink unavailable", zap.Error(err))
		} else {
			lg = lg.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
				return zapcore.NewTee(c, fileCore)
			}))
		}
	}
	l.loggers[cat] = lg
	return lg
}

func (l *Loggers) openFileCore(cat Category) (zapcore.Core, error) {
	path := filepath.Join(l.opts.Dir, string(cat)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	l.files = append(l.files, f)

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if l.opts.JSONFormat {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	return zapcore.NewCore(enc, zapcore.AddSync(f), l.level), nil
}

// Close syncs and closes every category file.
func (l *Loggers) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var firstErr error
	for _, f := range l.files {
		_ = f.Sync()
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	l.loggers = make(map[Category]*zap.Logger)
	return firstErr
}
