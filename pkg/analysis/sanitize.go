package analysis

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sanitizeProse reduces an LLM reply to plain prose suitable for the
// commentary panel. Models occasionally wrap replies in HTML or markdown
// even when asked not to; we parse leniently, keep only text content and
// drop markup artifacts that read badly in the UI.
func sanitizeProse(raw string) string {
	text := stripHTML(raw)
	text = stripMarkdown(text)
	return strings.Join(strings.Fields(text), " ")
}

// stripHTML extracts the text content of any markup in the reply. Plain
// text passes through untouched because the lenient parser wraps it in an
// implicit body.
func stripHTML(raw string) string {
	if !strings.ContainsRune(raw, '<') {
		return raw
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return raw
	}
	body := findBody(doc)
	if body == nil {
		return raw
	}
	var b strings.Builder
	collectText(body, &b)
	return b.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Body {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}

// collectText gathers text nodes, skipping scripts, styles and superscript
// citation markers. Block-level boundaries become spaces so words from
// adjacent paragraphs don't fuse.
func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	if n.Type == html.ElementNode {
		switch n.DataAtom {
		case atom.Sup, atom.Style, atom.Script:
			return
		case atom.P, atom.Br, atom.Div, atom.Li, atom.Tr:
			b.WriteString(" ")
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// stripMarkdown removes formatting characters that don't render in the
// plain-text commentary panel.
func stripMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "`", "")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		for strings.HasPrefix(trimmed, "#") {
			trimmed = strings.TrimPrefix(trimmed, "#")
		}
		lines[i] = strings.TrimSpace(trimmed)
	}
	return strings.Join(lines, "\n")
}

// clampWords cuts text to at most max words. Used as a hard stop when a
// model ignores the word budget in the prompt.
func clampWords(text string, max int) string {
	if max <= 0 {
		return text
	}
	words := strings.Fields(text)
	if len(words) <= max {
		return text
	}
	return strings.Join(words[:max], " ") + " …"
}

func countWords(text string) int {
	return len(strings.Fields(text))
}
