package main

import (
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"crosspost/internal/article"
	"crosspost/internal/publisher"
)

var previewHTML bool

var previewCmd = &cobra.Command{
	Use:   "preview <article.md>",
	Short: "Show the article as the platforms will receive it",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().BoolVar(&previewHTML, "html", false, "Print the styled HTML copied for WeChat")
}

func runPreview(cmd *cobra.Command, args []string) error {
	art, err := article.Parse(args[0])
	if err != nil {
		return err
	}
	art = publisher.NewOrchestrator(cfg, nil, loggers, nil).Prepare(art)

	if previewHTML {
		html, err := art.RenderStyledHTML()
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, html)
		return nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	out, err := renderer.Render(art.Markdown())
	if err != nil {
		return fmt.Errorf("failed to render article: %w", err)
	}

	fmt.Fprintf(stdout, "title: %s\n", art.Title())
	if tags := art.Tags(); len(tags) > 0 {
		fmt.Fprintf(stdout, "tags:  %v\n", tags)
	}
	fmt.Fprint(stdout, out)
	return nil
}
