package render

import (
	"regexp"
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
	"golang.org/x/net/html"
)

// nodeToLaTeX renders a non-math node. Math nodes are handled by the
// converter, which owns the bridge.
func nodeToLaTeX(n *doctree.Node) string {
	switch n.Kind {
	case doctree.KindText:
		if n.RawHTML != "" {
			return htmlToLaTeX(n.RawHTML)
		}
		return escapeLaTeX(n.Content)
	case doctree.KindInlineMath, doctree.KindDisplayMath, doctree.KindTable:
		return ""
	case doctree.KindHeading:
		return "\\" + headingCommand(n.Level) + "{" + escapeLaTeX(n.Content) + "}"
	case doctree.KindParagraph:
		var parts []string
		for _, child := range n.Children {
			parts = append(parts, nodeToLaTeX(child))
		}
		return strings.Join(parts, "")
	case doctree.KindList:
		env := "itemize"
		if n.Ordered {
			env = "enumerate"
		}
		var items []string
		for _, child := range n.Children {
			items = append(items, "  \\item "+nodeToLaTeX(child))
		}
		return "\\begin{" + env + "}\n" + strings.Join(items, "\n") + "\n\\end{" + env + "}"
	}
	return n.Content
}

func headingCommand(level int) string {
	switch level {
	case 1:
		return "section"
	case 2:
		return "subsection"
	case 3:
		return "subsubsection"
	case 4:
		return "paragraph"
	case 5, 6:
		return "subparagraph"
	}
	return "section"
}

// htmlToLaTeX reinterprets a text run's inline-formatting markup as LaTeX.
func htmlToLaTeX(raw string) string {
	root := parseFragment(raw)
	if root == nil {
		return escapeLaTeX(raw)
	}
	return strings.TrimSpace(convertChildrenLaTeX(root))
}

func convertChildrenLaTeX(n *html.Node) string {
	var buf strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		buf.WriteString(convertElementLaTeX(c))
	}
	return buf.String()
}

func convertElementLaTeX(n *html.Node) string {
	if n.Type == html.TextNode {
		return escapeLaTeX(n.Data)
	}
	if n.Type != html.ElementNode {
		return ""
	}

	inner := convertChildrenLaTeX(n)

	switch n.Data {
	case "b", "strong":
		return "\\textbf{" + inner + "}"
	case "i", "em":
		return "\\textit{" + inner + "}"
	case "u":
		return "\\underline{" + inner + "}"
	case "sup":
		return "\\textsuperscript{" + inner + "}"
	case "sub":
		return "\\textsubscript{" + inner + "}"
	case "s", "strike":
		return "\\sout{" + inner + "}"
	case "br":
		return " \\\\\n"
	case "ul":
		return latexListEnv("itemize", n)
	case "ol":
		return latexListEnv("enumerate", n)
	case "li":
		return inner
	case "p":
		return inner + "\n\n"
	}

	if level := classHeadingLevel(n); level > 0 {
		return "\\" + headingCommand(level) + "{" + strings.TrimSpace(inner) + "}\n\n"
	}
	return inner
}

func latexListEnv(env string, list *html.Node) string {
	var items []string
	for _, li := range childElements(list, "li") {
		items = append(items, "  \\item "+strings.TrimSpace(convertChildrenLaTeX(li)))
	}
	return "\\begin{" + env + "}\n" + strings.Join(items, "\n") + "\n\\end{" + env + "}"
}

var latexEscaper = strings.NewReplacer(
	"\\", "\\textbackslash{}",
	"&", "\\&",
	"%", "\\%",
	"$", "\\$",
	"#", "\\#",
	"_", "\\_",
	"{", "\\{",
	"}", "\\}",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

// escapeLaTeX escapes reserved LaTeX characters in plain text.
func escapeLaTeX(text string) string {
	return latexEscaper.Replace(text)
}

// --- shared fragment helpers ---

var vendorHeadingRe = regexp.MustCompile(`(?i)^(?:Mso)?Heading(?:Style)?([1-6])`)

func classHeadingLevel(n *html.Node) int {
	for _, cls := range strings.Fields(nodeAttr(n, "class")) {
		if m := vendorHeadingRe.FindStringSubmatch(cls); m != nil {
			return int(m[1][0] - '0')
		}
	}
	return 0
}

func nodeAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func childElements(n *html.Node, name string) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == name {
			out = append(out, c)
		}
	}
	return out
}

// parseFragment parses a markup snippet and returns the body element to walk.
func parseFragment(raw string) *html.Node {
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	if body := findElement(doc, "body"); body != nil {
		return body
	}
	return doc
}

func findElement(n *html.Node, name string) *html.Node {
	if n.Type == html.ElementNode && n.Data == name {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, name); found != nil {
			return found
		}
	}
	return nil
}
