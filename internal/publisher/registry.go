package publisher

import (
	"fmt"

	"crosspost/internal/config"
)

// Options carry the per-run values a publisher is built with.
type Options struct {
	Config *config.Config
	RunID  string
	// Timings replaces the defaults for the listed platforms.
	Timings map[Platform]Timings
}

// New builds the publisher for p with config overrides applied.
func New(p Platform, deps Deps, opts Options) (Publisher, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	sel := DefaultSelectors(p).Override(cfg.Platform(string(p)))
	timings, ok := opts.Timings[p]
	if !ok {
		timings = DefaultTimings(p).WithConfig(cfg, p)
	}

	switch p {
	case Juejin:
		return NewJuejin(deps, sel, timings), nil
	case CSDN:
		return NewCSDN(deps, sel, timings), nil
	case Wechat:
		return NewWechat(deps, sel, timings, cfg.Drafts.Dir, opts.RunID), nil
	default:
		return nil, fmt.Errorf("unknown platform %q", p)
	}
}
