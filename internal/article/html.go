package article

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// The wechat editor drops <style> blocks, so every rule is written onto the elements.
var (
	sectionStyle = `max-width:750px;margin:0 auto;padding:20px;font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,"PingFang SC","Hiragino Sans GB","Microsoft YaHei",sans-serif;font-size:16px;line-height:1.8;color:#333;`
	preCodeStyle = `background:none;color:inherit;padding:0;`

	elementStyles = map[atom.Atom]string{
		atom.H1:         `font-size:24px;font-weight:bold;margin:20px 0;`,
		atom.H2:         `font-size:20px;font-weight:bold;margin:18px 0;border-left:4px solid #42b983;padding-left:10px;`,
		atom.H3:         `font-size:18px;font-weight:bold;margin:16px 0;`,
		atom.P:          `margin:12px 0;`,
		atom.Code:       `background:#f5f5f5;padding:2px 6px;border-radius:3px;font-family:'Courier New',monospace;font-size:14px;`,
		atom.Pre:        `background:#282c34;color:#abb2bf;padding:15px;border-radius:5px;overflow-x:auto;`,
		atom.Blockquote: `border-left:4px solid #ddd;padding-left:15px;color:#666;margin:15px 0;`,
		atom.Img:        `max-width:100%;border-radius:5px;`,
		atom.A:          `color:#42b983;text-decoration:none;`,
		atom.Table:      `border-collapse:collapse;margin:12px 0;`,
		atom.Th:         `border:1px solid #ddd;padding:6px 12px;background:#f5f5f5;`,
		atom.Td:         `border:1px solid #ddd;padding:6px 12px;`,
	}
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(gmhtml.WithXHTML()),
)

// RenderHTML converts the Markdown body to HTML.
func (a Article) RenderHTML() (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(a.markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// RenderStyledHTML renders the body as one <section> with inline styles, ready to
// paste into the wechat editor.
func (a Article) RenderStyledHTML() (string, error) {
	raw, err := a.RenderHTML()
	if err != nil {
		return "", err
	}
	return InlineStyles(raw)
}

// InlineStyles wraps an HTML fragment in a styled <section> and writes each
// element's style attribute. Existing style attributes are kept after the defaults.
func InlineStyles(fragment string) (string, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	section := &html.Node{
		Type:     html.ElementNode,
		Data:     "section",
		DataAtom: atom.Section,
		Attr:     []html.Attribute{{Key: "style", Val: sectionStyle}},
	}
	for _, n := range nodes {
		section.AppendChild(n)
	}
	styleTree(section)

	var buf bytes.Buffer
	if err := html.Render(&buf, section); err != nil {
		return "", fmt.Errorf("failed to render html: %w", err)
	}
	return buf.String(), nil
}

func styleTree(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			style, ok := elementStyles[c.DataAtom]
			if c.DataAtom == atom.Code && n.DataAtom == atom.Pre {
				style, ok = preCodeStyle, true
			}
			if ok {
				setStyle(c, style)
			}
		}
		styleTree(c)
	}
}

func setStyle(n *html.Node, style string) {
	for i, attr := range n.Attr {
		if attr.Key == "style" {
			n.Attr[i].Val = style + attr.Val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "style", Val: style})
}

// RenderDocument wraps the styled body in a standalone HTML page, for draft files.
func (a Article) RenderDocument() (string, error) {
	body, err := a.RenderStyledHTML()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", html.EscapeString(a.title))
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String(), nil
}
