package publisher

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"crosspost/internal/article"
	"crosspost/internal/browser"
	"crosspost/internal/config"
	"crosspost/internal/inject"
	"crosspost/internal/logging"
	"crosspost/internal/login"
	"crosspost/internal/ux"
)

// Orchestrator launches one browser session and runs the selected publishers in order.
type Orchestrator struct {
	cfg      *config.Config
	launcher browser.Launcher
	loggers  *logging.Loggers
	log      *zap.Logger
	notify   ux.Notifier

	confirm     func(next Platform) bool
	beforeClose func()
	timings     map[Platform]Timings
	clipboard   inject.Clipboard
	build       func(Platform, Deps, Options) (Publisher, error)
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithConfirm asks before each publisher after the first. A false answer skips
// the remaining platforms.
func WithConfirm(fn func(next Platform) bool) OrchestratorOption {
	return func(o *Orchestrator) { o.confirm = fn }
}

// WithBeforeClose runs fn after the last publisher, while the browser is still open.
// It is not called when the run was cancelled.
func WithBeforeClose(fn func()) OrchestratorOption {
	return func(o *Orchestrator) { o.beforeClose = fn }
}

// WithTimings replaces the waits of the listed platforms.
func WithTimings(t map[Platform]Timings) OrchestratorOption {
	return func(o *Orchestrator) { o.timings = t }
}

// WithClipboard replaces the host clipboard used by the injector.
func WithClipboard(c inject.Clipboard) OrchestratorOption {
	return func(o *Orchestrator) { o.clipboard = c }
}

// WithPublisherFactory replaces how publishers are built.
func WithPublisherFactory(fn func(Platform, Deps, Options) (Publisher, error)) OrchestratorOption {
	return func(o *Orchestrator) { o.build = fn }
}

// NewOrchestrator creates an orchestrator. A nil loggers or notify discards output.
func NewOrchestrator(cfg *config.Config, launcher browser.Launcher, loggers *logging.Loggers, notify ux.Notifier, opts ...OrchestratorOption) *Orchestrator {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if loggers == nil {
		loggers = logging.Nop()
	}
	if notify == nil {
		notify = ux.Nop{}
	}
	o := &Orchestrator{
		cfg:      cfg,
		launcher: launcher,
		loggers:  loggers,
		log:      loggers.Get(logging.CategoryPublish),
		notify:   notify,
		build:    New,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Prepare applies the site settings to art: image URLs are made absolute and the
// footer is appended when enabled.
func (o *Orchestrator) Prepare(art article.Article) article.Article {
	out := art.RewriteImageURLs(o.cfg.Site.BaseURL)
	if o.cfg.Site.Footer && o.cfg.Site.BaseURL != "" {
		out = out.WithFooter(o.cfg.Site.BaseURL, o.cfg.Site.Author)
	}
	return out
}

// Run publishes art to platforms in order. The only error is a launch failure;
// per-platform failures are in the report.
func (o *Orchestrator) Run(ctx context.Context, art article.Article, platforms []Platform) (*Report, error) {
	report := &Report{RunID: uuid.NewString(), Started: time.Now()}
	log := o.log.With(zap.String("run", report.RunID))

	selected := o.enabled(platforms)
	if len(selected) == 0 {
		o.notify.Warn("no enabled platform selected")
		report.Finished = time.Now()
		return report, nil
	}

	o.notify.Info("launching browser...")
	session, err := o.launcher.Launch(ctx)
	if err != nil {
		log.Error("launch failed", zap.Error(err))
		return nil, err
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.Warn("session close failed", zap.Error(err))
		}
	}()
	if session.Simulated() {
		o.notify.Info("simulated browser, nothing is sent to the platforms")
	}

	deps := o.deps(session)
	prepared := o.Prepare(art)

	for i, p := range selected {
		if err := ctx.Err(); err != nil {
			report.Skipped = append(report.Skipped, selected[i:]...)
			log.Info("run cancelled", zap.Error(err))
			break
		}
		if i > 0 && o.confirm != nil && !o.confirm(p) {
			report.Skipped = append(report.Skipped, selected[i:]...)
			log.Info("operator stopped the run", zap.String("next", string(p)))
			break
		}

		pub, err := o.build(p, deps, Options{Config: o.cfg, RunID: report.RunID, Timings: o.timings})
		if err != nil {
			report.Results = append(report.Results, Result{Platform: p, Status: StatusFailed, State: StateFailed, Error: err.Error()})
			continue
		}
		res := pub.Publish(ctx, session, prepared)
		log.Info("publisher finished",
			zap.String("platform", string(p)),
			zap.String("status", string(res.Status)),
			zap.Stringer("reached", res.Reached),
			zap.Duration("duration", res.Duration))
		report.Results = append(report.Results, res)
	}

	report.Finished = time.Now()
	if ctx.Err() != nil {
		log.Info("run cancelled, closing without hold")
		return report, nil
	}
	if o.beforeClose != nil {
		o.beforeClose()
	}
	return report, nil
}

// enabled drops platforms disabled in config, keeping order.
func (o *Orchestrator) enabled(platforms []Platform) []Platform {
	out := make([]Platform, 0, len(platforms))
	var off []string
	for _, p := range platforms {
		if o.cfg.Platform(string(p)).Enabled {
			out = append(out, p)
		} else {
			off = append(off, p.DisplayName())
		}
	}
	if len(off) > 0 {
		o.notify.Warn("skipping disabled platforms: %s", strings.Join(off, ", "))
	}
	return out
}

func (o *Orchestrator) deps(session browser.Session) Deps {
	injectOpts := []inject.Option{}
	switch {
	case o.clipboard != nil:
		injectOpts = append(injectOpts, inject.WithClipboard(o.clipboard))
	case session.Simulated():
		injectOpts = append(injectOpts, inject.WithClipboard(discardClipboard{}))
	}
	return Deps{
		Log:    o.loggers.Get(logging.CategoryPublish),
		Notify: o.notify,
		Login: login.NewDetector(o.loggers.Get(logging.CategoryLogin), o.notify,
			login.WithInterval(o.cfg.GetLoginInterval()),
			login.WithRemindEvery(o.cfg.GetRemindEvery())),
		Injector: inject.New(o.loggers.Get(logging.CategoryInject), o.notify, injectOpts...),
	}
}

// discardClipboard keeps simulated runs off the operator's real clipboard.
type discardClipboard struct{}

func (discardClipboard) WriteAll(string) error { return nil }
