package browser

import (
	"context"
	"runtime"
	"time"
)

// XPathPrefix marks a QueryAll argument as an XPath expression instead of a CSS selector.
const XPathPrefix = "xpath/"

// Script is a named in-page function. Source must be a JS function expression,
// e.g. `(text) => document.execCommand('insertText', false, text)`.
// The name lets the simulated driver answer scripts without a JS engine.
type Script struct {
	Name   string
	Source string
}

// Cookie is the subset of a browser cookie the pipeline looks at.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Modifier is a keyboard modifier used in key chords.
type Modifier string

const (
	ModifierControl Modifier = "Control"
	ModifierMeta    Modifier = "Meta"
	ModifierShift   Modifier = "Shift"
	ModifierAlt     Modifier = "Alt"
)

// PrimaryModifier returns the platform's primary shortcut modifier for goos:
// the command key on macOS and control everywhere else.
func PrimaryModifier(goos string) Modifier {
	if goos == "darwin" {
		return ModifierMeta
	}
	return ModifierControl
}

// HostModifier is PrimaryModifier for the running process.
func HostModifier() Modifier {
	return PrimaryModifier(runtime.GOOS)
}

// Element is a handle to a node returned by QueryAll.
type Element interface {
	Click(ctx context.Context) error
}

// Page is the capability surface every publisher is written against. Each
// operation may fail with *DriverError; ErrPageClosed is wrapped when the page is gone.
type Page interface {
	// Open navigates to url and waits for the load event.
	Open(ctx context.Context, url string) error
	// WaitUntilTrue polls pred in page until it returns a truthy value.
	// A zero timeout waits until ctx is done.
	WaitUntilTrue(ctx context.Context, pred Script, timeout time.Duration, args ...any) error
	// WaitFor waits until selector resolves to an element.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	// Exists reports whether selector currently resolves to at least one element.
	Exists(ctx context.Context, selector string) (bool, error)
	// QueryAll returns all matches; a selector starting with XPathPrefix is an XPath.
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	TypeInto(ctx context.Context, selector, text string) error
	// SetFieldValue assigns the value directly and dispatches input and change events.
	SetFieldValue(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	Cookies(ctx context.Context) ([]Cookie, error)
	// RunScript evaluates script with args and returns the JSON-decoded result.
	RunScript(ctx context.Context, script Script, args ...any) (any, error)
	PressKeyChord(ctx context.Context, mod Modifier, key string) error
	CurrentURL() string
	IsClosed() bool
	Close() error
}

// Session is the shared handle to one controllable browser.
type Session interface {
	// NewPage opens a fresh page owned by the caller.
	NewPage(ctx context.Context) (Page, error)
	// Simulated reports whether pages are stubs.
	Simulated() bool
	// Close disconnects and kills the browser. It is idempotent.
	Close() error
}

// Launcher acquires a Session.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// Truthy applies JS truthiness to a decoded script result.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}
