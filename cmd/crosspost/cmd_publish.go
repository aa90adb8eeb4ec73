package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crosspost/internal/article"
	"crosspost/internal/browser"
	"crosspost/internal/logging"
	"crosspost/internal/publisher"
	"crosspost/internal/ux"
)

var (
	publishPlatforms string
	publishYes       bool
	publishNoWait    bool
)

var publishCmd = &cobra.Command{
	Use:   "publish <article.md>",
	Short: "Fill the selected platforms' editors with an article",
	Long: `Opens each selected platform's editor in one shared browser, waits for you to
log in where needed, fills title and body and opens the publish dialog.

Platforms are chosen interactively by number (e.g. 1,3 or 1，3) unless
--platforms is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVarP(&publishPlatforms, "platforms", "p", "", "Comma separated platforms or numbers, skips the menu")
	publishCmd.Flags().BoolVarP(&publishYes, "yes", "y", false, "Do not ask before each platform")
	publishCmd.Flags().BoolVar(&publishNoWait, "no-wait", false, "Close the browser right after the last platform")
}

func runPublish(cmd *cobra.Command, args []string) error {
	console := newConsole()
	prompter := ux.NewPrompter(stdin, stdout)

	path := args[0]
	if _, err := os.Stat(path); err != nil {
		console.Error("article not found: %s", path)
		return fmt.Errorf("article not found: %w", err)
	}
	art, err := article.Parse(path)
	if err != nil {
		console.Error("could not read the article: %v", err)
		return err
	}

	loggers.Get(logging.CategoryArticle).Info("article parsed",
		zap.String("source", art.Source()),
		zap.String("title", art.Title()),
		zap.Int("tags", len(art.Tags())))

	console.Banner("🚀 crosspost")
	console.Info("title: %s", art.Title())
	console.Info("summary: %s", art.Summary())
	if tags := art.Tags(); len(tags) > 0 {
		console.Info("tags: %s", strings.Join(tags, ", "))
	}

	platforms, err := choosePlatforms(prompter, publishPlatforms)
	if err != nil {
		console.Error("%v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []publisher.OrchestratorOption{}
	if !publishYes {
		opts = append(opts, publisher.WithConfirm(func(next publisher.Platform) bool {
			ok, err := prompter.Confirm(fmt.Sprintf("continue with %s?", next.DisplayName()), true)
			return err == nil && ok
		}))
	}
	if !publishNoWait {
		opts = append(opts, publisher.WithBeforeClose(func() {
			// A second interrupt during the hold must end the process.
			stop()
			console.Warn("check the browser tabs before closing, nothing is published until you confirm")
			_, _ = prompter.Ask("press Enter to close the browser and exit...")
		}))
	}

	launcher := browser.NewLauncher(cfg.Browser, loggers.Get(logging.CategoryBrowser))
	orch := publisher.NewOrchestrator(cfg, launcher, loggers, console, opts...)

	report, err := orch.Run(ctx, art, platforms)
	if err != nil {
		console.Error("could not start the browser, is Chrome installed? (%v)", err)
		return err
	}
	logger.Info("run finished", zap.String("summary", report.String()))

	console.Print("\n" + report.Render(ux.NewStyles(ux.DetectTheme())))
	return nil
}

// choosePlatforms uses the flag when set, otherwise shows the menu.
func choosePlatforms(prompter *ux.Prompter, flag string) ([]publisher.Platform, error) {
	if flag != "" {
		return publisher.ParseSelection(flag)
	}
	var sb strings.Builder
	sb.WriteString("\nchoose platforms (comma separated, e.g. 1,2):\n")
	for i, p := range publisher.AllPlatforms {
		enabled := ""
		if !cfg.Platform(string(p)).Enabled {
			enabled = " (disabled)"
		}
		fmt.Fprintf(&sb, "  %d. %s%s\n", i+1, p.DisplayName(), enabled)
	}
	fmt.Fprint(stdout, sb.String())

	answer, err := prompter.Ask("> ")
	if err != nil {
		return nil, err
	}
	return publisher.ParseSelection(answer)
}
