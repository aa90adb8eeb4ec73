package article

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	relativeImage = regexp.MustCompile(`!\[([^\]]*)\]\(([^)\s]+)\)`)
	unsafeName    = regexp.MustCompile(`[/\\:*?"<>|]`)
)

// RewriteImageURLs resolves relative image paths against baseURL. Absolute and
// protocol-relative URLs, and data URIs, are left alone.
func (a Article) RewriteImageURLs(baseURL string) Article {
	if baseURL == "" {
		return a
	}
	base := strings.TrimRight(baseURL, "/")
	md := relativeImage.ReplaceAllStringFunc(a.markdown, func(m string) string {
		sub := relativeImage.FindStringSubmatch(m)
		alt, target := sub[1], sub[2]
		if isAbsolute(target) {
			return m
		}
		return fmt.Sprintf("![%s](%s/%s)", alt, base, strings.TrimLeft(strings.TrimPrefix(target, "./"), "/"))
	})
	return a.WithMarkdown(md)
}

func isAbsolute(target string) bool {
	lower := strings.ToLower(target)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "data:")
}

// WithFooter appends a copyright notice linking to articleURL.
func (a Article) WithFooter(articleURL, author string) Article {
	var sb strings.Builder
	sb.WriteString(strings.TrimRight(a.markdown, "\n"))
	sb.WriteString("\n\n---\n\n")
	fmt.Fprintf(&sb, "> 本文首发于：[%s](%s)\n", articleURL, articleURL)
	if author != "" {
		sb.WriteString(">\n")
		fmt.Fprintf(&sb, "> 作者：%s\n", author)
	}
	sb.WriteString(">\n> 转载请注明出处\n")
	return a.WithMarkdown(sb.String())
}

// FileName turns the title into a safe file name with ext appended.
func (a Article) FileName(ext string) string {
	name := strings.TrimSpace(unsafeName.ReplaceAllString(a.title, "-"))
	if name == "" {
		name = "untitled"
	}
	return name + ext
}
