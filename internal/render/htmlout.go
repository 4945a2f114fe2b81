package render

import (
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
	"golang.org/x/net/html"
)

func nodeToHTML(n *doctree.Node) string {
	switch n.Kind {
	case doctree.KindText:
		if n.RawHTML != "" {
			return cleanHTML(n.RawHTML)
		}
		return escapeHTML(n.Content)
	case doctree.KindInlineMath, doctree.KindDisplayMath, doctree.KindTable:
		return ""
	case doctree.KindHeading:
		level := n.Level
		if level > 6 {
			level = 6
		}
		tag := "h" + string(rune('0'+level))
		return "<" + tag + ">" + escapeHTML(n.Content) + "</" + tag + ">"
	case doctree.KindParagraph:
		var buf strings.Builder
		for _, child := range n.Children {
			buf.WriteString(nodeToHTML(child))
		}
		return "<p>" + buf.String() + "</p>"
	case doctree.KindList:
		tag := "ul"
		if n.Ordered {
			tag = "ol"
		}
		var buf strings.Builder
		for _, child := range n.Children {
			// Items parsed from markup already carry their <li> wrapper.
			inner := nodeToHTML(child)
			if strings.HasPrefix(inner, "<li") {
				buf.WriteString(inner)
			} else {
				buf.WriteString("<li>" + inner + "</li>")
			}
		}
		return "<" + tag + ">" + buf.String() + "</" + tag + ">"
	}
	return escapeHTML(n.Content)
}

// cleanHTML strips vendor styling from a markup snippet and returns minimal
// semantic markup: inline styles, Mso* classes, data- attributes, and
// language attributes all go.
func cleanHTML(raw string) string {
	root := parseFragment(raw)
	if root == nil {
		return escapeHTML(raw)
	}

	var clean func(*html.Node)
	clean = func(n *html.Node) {
		if n.Type == html.ElementNode {
			cleanAttrs(n)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			clean(c)
		}
	}
	clean(root)

	var buf strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		html.Render(&buf, c)
	}
	return strings.TrimSpace(buf.String())
}

func cleanAttrs(n *html.Node) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		switch {
		case a.Key == "style", a.Key == "lang", a.Key == "xml:lang":
		case strings.HasPrefix(a.Key, "data-"):
		case a.Key == "class":
			var classes []string
			for _, c := range strings.Fields(a.Val) {
				if !strings.HasPrefix(c, "Mso") {
					classes = append(classes, c)
				}
			}
			if len(classes) > 0 {
				a.Val = strings.Join(classes, " ")
				kept = append(kept, a)
			}
		default:
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escapeHTML(text string) string {
	return htmlEscaper.Replace(text)
}
