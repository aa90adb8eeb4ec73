// Package article holds the immutable article record every publisher reads, and
// the parsing and rendering around it.
package article

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Article is an immutable parsed Markdown article. Transforms return a new value.
type Article struct {
	title    string
	tags     []string
	markdown string
	summary  string
	source   string
}

// New builds an article. tags are copied.
func New(title, markdown string, tags ...string) Article {
	return Article{
		title:    title,
		markdown: markdown,
		tags:     append([]string(nil), tags...),
	}
}

func (a Article) Title() string    { return a.title }
func (a Article) Markdown() string { return a.markdown }

// Summary is the first blockquote line, or the title when there is none.
func (a Article) Summary() string {
	if a.summary == "" {
		return a.title
	}
	return a.summary
}

// Source is the file the article was parsed from, if any.
func (a Article) Source() string { return a.source }

// Tags returns a copy of the tags in their original order.
func (a Article) Tags() []string {
	return append([]string(nil), a.tags...)
}

// WithMarkdown returns a copy with a different body.
func (a Article) WithMarkdown(md string) Article {
	b := a
	b.tags = a.Tags()
	b.markdown = md
	return b
}

var (
	titleLine    = regexp.MustCompile(`(?m)^#\s+(.+)$`)
	summaryLine  = regexp.MustCompile(`(?m)^>\s+(.+)$`)
	tagsMarker   = regexp.MustCompile(`(?i)tags?:\s*\[([^\]]+)\]`)
	linkTarget   = regexp.MustCompile(`\]\(([^)\s]+)`)
	repeatSlash  = regexp.MustCompile(`([^:/])//+`)
	frontMatterD = []byte("---")
)

// frontMatter is the optional YAML header.
type frontMatter struct {
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags"`
	Summary string   `yaml:"summary"`
}

// Parse reads a Markdown file.
func Parse(path string) (Article, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Article{}, fmt.Errorf("failed to read article: %w", err)
	}
	a, err := ParseBytes(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), data)
	if err != nil {
		return Article{}, fmt.Errorf("%s: %w", path, err)
	}
	a.source = path
	return a, nil
}

// ParseBytes parses Markdown content. fallbackTitle is used when neither front matter
// nor a `# Title` line names the article.
func ParseBytes(fallbackTitle string, data []byte) (Article, error) {
	var fm frontMatter
	body, header, err := splitFrontMatter(data)
	if err != nil {
		return Article{}, err
	}
	if header != nil {
		if err := yaml.Unmarshal(header, &fm); err != nil {
			return Article{}, fmt.Errorf("invalid front matter: %w", err)
		}
	}

	content := RepairLinkSlashes(string(body))

	a := Article{markdown: content, title: fm.Title, summary: fm.Summary}
	if a.title == "" {
		if m := titleLine.FindStringSubmatch(content); m != nil {
			a.title = strings.TrimSpace(m[1])
		} else {
			a.title = fallbackTitle
		}
	}
	if a.summary == "" {
		if m := summaryLine.FindStringSubmatch(content); m != nil {
			a.summary = strings.TrimSpace(m[1])
		}
	}

	tags := fm.Tags
	if len(tags) == 0 {
		if m := tagsMarker.FindStringSubmatch(content); m != nil {
			tags = splitTags(m[1])
		}
	}
	a.tags = cleanTags(tags)
	return a, nil
}

// splitFrontMatter returns the body and the raw YAML header, if the data opens with one.
func splitFrontMatter(data []byte) (body []byte, header []byte, err error) {
	trimmed := bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(trimmed, frontMatterD) {
		return data, nil, nil
	}
	rest := trimmed[len(frontMatterD):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return data, nil, nil
	}
	rest = rest[nl+1:]
	for off := 0; off < len(rest); {
		end := bytes.IndexByte(rest[off:], '\n')
		line := rest[off:]
		if end >= 0 {
			line = rest[off : off+end]
		}
		if string(bytes.TrimRight(line, "\r ")) == "---" {
			header = rest[:off]
			if end < 0 {
				return nil, header, nil
			}
			return rest[off+end+1:], header, nil
		}
		if end < 0 {
			break
		}
		off += end + 1
	}
	return nil, nil, fmt.Errorf("unterminated front matter")
}

func splitTags(raw string) []string {
	return strings.Split(raw, ",")
}

// cleanTags trims quotes and whitespace, dropping empties and duplicates.
func cleanTags(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.Trim(strings.TrimSpace(t), `"'`)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// RepairLinkSlashes collapses repeated slashes inside link and image targets, e.g.
// `/notes//2025/a.png` becomes `/notes/2025/a.png`. Scheme separators are kept.
func RepairLinkSlashes(md string) string {
	return linkTarget.ReplaceAllStringFunc(md, func(m string) string {
		target := m[2:]
		prefix := ""
		if strings.HasPrefix(target, "//") {
			prefix, target = "//", target[2:]
		}
		return "](" + prefix + repeatSlash.ReplaceAllString(target, "$1/")
	})
}
