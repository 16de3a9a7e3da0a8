package llm

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// htmlDocument matches replies that open with a document or block element.
// Markdown with the odd inline tag does not match and is kept verbatim.
var htmlDocument = regexp.MustCompile(`(?i)^\s*<(!doctype|html|body|p|div|ul|ol|h[1-6]|table)\b[^>]*>`)

var blockElements = map[string]bool{
	"p": true, "div": true, "ul": true, "ol": true, "table": true, "tr": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// PlainText flattens generated output that arrives as an HTML document into
// plain text with one block per line. Anything else is returned unchanged.
func PlainText(content string) string {
	if !htmlDocument.MatchString(content) {
		return content
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return content
	}

	doc.Find("script, style").Remove()

	var sb strings.Builder
	writeText(&sb, doc.Find("body"))
	return tidy(sb.String())
}

func writeText(sb *strings.Builder, s *goquery.Selection) {
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		node := c.Get(0)
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			return
		}
		name := goquery.NodeName(c)
		switch {
		case name == "br":
			sb.WriteString("\n")
			return
		case name == "li":
			sb.WriteString("\n- ")
		case blockElements[name]:
			sb.WriteString("\n")
		}
		writeText(sb, c)
		if blockElements[name] {
			sb.WriteString("\n")
		}
	})
}

// tidy trims every line and collapses runs of blank lines.
func tidy(s string) string {
	var lines []string
	blank := false
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, "")
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
