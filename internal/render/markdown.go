package render

import (
	"strconv"
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
	"golang.org/x/net/html"
)

func nodeToMarkdown(n *doctree.Node) string {
	switch n.Kind {
	case doctree.KindText:
		if n.RawHTML != "" {
			return htmlToMarkdown(n.RawHTML)
		}
		return n.Content
	case doctree.KindInlineMath, doctree.KindDisplayMath, doctree.KindTable:
		return ""
	case doctree.KindHeading:
		return strings.Repeat("#", n.Level) + " " + n.Content
	case doctree.KindParagraph:
		var parts []string
		for _, child := range n.Children {
			parts = append(parts, nodeToMarkdown(child))
		}
		return strings.Join(parts, "")
	case doctree.KindList:
		var items []string
		for i, child := range n.Children {
			prefix := "-"
			if n.Ordered {
				prefix = strconv.Itoa(i+1) + "."
			}
			items = append(items, prefix+" "+nodeToMarkdown(child))
		}
		return strings.Join(items, "\n")
	}
	return n.Content
}

// htmlToMarkdown reinterprets a text run's inline-formatting markup as
// Markdown; tags with no Markdown equivalent (underline, sub/sup) stay HTML.
func htmlToMarkdown(raw string) string {
	root := parseFragment(raw)
	if root == nil {
		return raw
	}
	return strings.TrimSpace(convertChildrenMarkdown(root))
}

func convertChildrenMarkdown(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(convertElementMarkdown(c))
	}
	return buf.String()
}

func convertElementMarkdown(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type != html.ElementNode {
		return ""
	}

	inner := convertChildrenMarkdown(n)

	switch n.Data {
	case "b", "strong":
		return "**" + inner + "**"
	case "i", "em":
		return "*" + inner + "*"
	case "u":
		return "<u>" + inner + "</u>"
	case "sup":
		return "<sup>" + inner + "</sup>"
	case "sub":
		return "<sub>" + inner + "</sub>"
	case "s", "strike":
		return "~~" + inner + "~~"
	case "br":
		return "\n"
	case "ul":
		var items []string
		for _, li := range childElements(n, "li") {
			items = append(items, "- "+strings.TrimSpace(convertChildrenMarkdown(li)))
		}
		return strings.Join(items, "\n")
	case "ol":
		var items []string
		for i, li := range childElements(n, "li") {
			items = append(items, strconv.Itoa(i+1)+". "+strings.TrimSpace(convertChildrenMarkdown(li)))
		}
		return strings.Join(items, "\n")
	case "li":
		return strings.TrimSpace(inner)
	case "p":
		return inner + "\n\n"
	}

	if level := classHeadingLevel(n); level > 0 {
		return strings.Repeat("#", level) + " " + strings.TrimSpace(inner) + "\n\n"
	}
	return inner
}
