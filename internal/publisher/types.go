// Package publisher drives one platform's web editor per Publisher and runs them
// in order against a shared browser session.
//
// Every Publisher is a fixed sequence of steps: open a page, wait for login, fill
// the title, inject the body, let the editor process assets and surface the publish
// control. The operator confirms the actual publication by hand, so a finished run
// ends in a manual-check status rather than Success.
package publisher

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crosspost/internal/article"
	"crosspost/internal/browser"
)

// Platform identifies a target site.
type Platform string

const (
	Juejin Platform = "juejin"
	CSDN   Platform = "csdn"
	Wechat Platform = "wechat"
)

// AllPlatforms lists the supported platforms in menu order.
var AllPlatforms = []Platform{Juejin, CSDN, Wechat}

// DisplayName is the name operators know the platform by.
func (p Platform) DisplayName() string {
	switch p {
	case Juejin:
		return "掘金"
	case CSDN:
		return "CSDN"
	case Wechat:
		return "微信公众号"
	default:
		return string(p)
	}
}

// ParsePlatform accepts a platform id or its 1-based menu number.
func ParsePlatform(s string) (Platform, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(AllPlatforms) {
			return AllPlatforms[n-1], nil
		}
		return "", fmt.Errorf("no platform numbered %d", n)
	}
	for _, p := range AllPlatforms {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ParseSelection parses a comma separated list such as "1,3" or "juejin，csdn".
// Both the ASCII and the full-width comma separate entries. Duplicates are dropped
// and menu order is kept.
func ParseSelection(input string) ([]Platform, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == '，' || r == ' ' || r == '\t'
	})
	chosen := make(map[Platform]bool, len(fields))
	for _, f := range fields {
		p, err := ParsePlatform(f)
		if err != nil {
			return nil, err
		}
		chosen[p] = true
	}
	if len(chosen) == 0 {
		return nil, fmt.Errorf("no platform selected")
	}
	out := make([]Platform, 0, len(chosen))
	for _, p := range AllPlatforms {
		if chosen[p] {
			out = append(out, p)
		}
	}
	return out, nil
}

// Status is the advisory outcome of a publish attempt.
type Status string

const (
	StatusSuccess              Status = "success"
	StatusManualCheckRequired  Status = "manual_check"
	StatusManualActionRequired Status = "manual_action_required"
	StatusFailed               Status = "failed"
)

// Result is what a Publisher returns. It is never accompanied by an error.
type Result struct {
	Platform     Platform
	Status       Status
	State        State // Done or Failed
	Reached      State // last state entered before the run ended
	Error        string
	ArtifactPath string
	Duration     time.Duration
}

// Failed reports whether the attempt failed.
func (r Result) Failed() bool { return r.Status == StatusFailed }

// Publisher prepares an article in one platform's editor.
type Publisher interface {
	Platform() Platform
	// Publish opens its own page on session. Errors and panics are converted
	// into a Failed result.
	Publish(ctx context.Context, session browser.Session, art article.Article) Result
}
