// Package parser turns word-processor clipboard HTML (or raw OOXML) into a
// normalized document node tree, keeping embedded OMML math byte-for-byte.
package parser

import (
	"regexp"
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
	"golang.org/x/net/html"
)

// Word emits MsoHeadingN classes; some producers use HeadingStyleN.
var headingClassRe = regexp.MustCompile(`(?i)^(?:Mso)?Heading(?:Style)?([1-6])`)

// Inline formatting tags kept as-is on text runs so each renderer can
// reinterpret them for its own target format.
var formattingTags = map[string]bool{
	"b": true, "strong": true, "i": true, "em": true,
	"u": true, "sup": true, "sub": true, "s": true, "strike": true,
}

// Parse extracts the document structure from clipboard HTML. The parser never
// rejects input; worst case it returns no nodes.
func Parse(rawHTML string) []*doctree.Node {
	// Unwrap OMML from conditional comments, then isolate every OMML
	// fragment behind a placeholder before the HTML parser can mangle it.
	cleaned := unwrapConditionals(rawHTML)
	cleaned, display, inline := extractMathBlocks(cleaned)

	doc, err := html.Parse(strings.NewReader(cleaned))
	if err != nil {
		return nil
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}

	var nodes []*doctree.Node
	walkElements(root, &nodes, display, inline)
	return nodes
}

func walkElements(parent *html.Node, out *[]*doctree.Node, display, inline map[string]string) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			text := normalizeText(c.Data)
			// Clipboard producers delimit the real selection with marker
			// strings; they are not content.
			if text != "" && text != "StartFragment" && text != "EndFragment" {
				*out = append(*out, &doctree.Node{Kind: doctree.KindText, Content: text, RawHTML: text})
			}
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}

		switch c.Data {
		case displayPlaceholderTag:
			if xml := display[attr(c, "data-id")]; xml != "" {
				*out = append(*out, displayMathNode(xml))
			}
			continue
		case inlinePlaceholderTag:
			if xml := inline[attr(c, "data-id")]; xml != "" {
				*out = append(*out, &doctree.Node{Kind: doctree.KindInlineMath, MathXML: xml})
			}
			continue
		case "table":
			handleTable(c, out, display, inline)
			continue
		case "ul", "ol":
			handleList(c, out)
			continue
		case "p":
			handleParagraph(c, out, display, inline)
			continue
		case "w:p":
			handleWordParagraph(c, out, display, inline)
			continue
		}

		if level := detectHeading(c); level > 0 {
			*out = append(*out, &doctree.Node{
				Kind:    doctree.KindHeading,
				Content: strings.TrimSpace(textContent(c)),
				Level:   level,
			})
			continue
		}

		// div, span, body, unknown OOXML wrappers: recurse.
		walkElements(c, out, display, inline)
	}
}

func displayMathNode(xml string) *doctree.Node {
	return &doctree.Node{
		Kind:    doctree.KindDisplayMath,
		MathXML: xml,
		MathEnv: detectMathEnv(xml),
	}
}

// detectHeading resolves a heading level from a native tag or a vendor
// heading style class.
func detectHeading(n *html.Node) int {
	switch n.Data {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	for _, cls := range strings.Fields(attr(n, "class")) {
		if m := headingClassRe.FindStringSubmatch(cls); m != nil {
			return int(m[1][0] - '0')
		}
	}
	return 0
}

// handleParagraph processes a <p> that may hold mixed text and math
// placeholders. A paragraph whose only content is display math loses its
// wrapper: display math is never nested inside a paragraph node.
func handleParagraph(p *html.Node, out *[]*doctree.Node, display, inline map[string]string) {
	if ph := findFirst(p, displayPlaceholderTag); ph != nil {
		if xml := display[attr(ph, "data-id")]; xml != "" {
			*out = append(*out, displayMathNode(xml))
		}
		return
	}

	if level := detectHeading(p); level > 0 {
		*out = append(*out, &doctree.Node{
			Kind:    doctree.KindHeading,
			Content: strings.TrimSpace(textContent(p)),
			Level:   level,
		})
		return
	}

	var children []*doctree.Node
	extractInline(p, &children, inline)

	switch len(children) {
	case 0:
	case 1:
		// Avoid single-child paragraph wrappers.
		*out = append(*out, children[0])
	default:
		*out = append(*out, &doctree.Node{
			Kind:     doctree.KindParagraph,
			Children: children,
			RawHTML:  renderNode(p),
		})
	}
}

// handleWordParagraph processes a <w:p> element from raw OOXML input. Text
// lives in w:t runs; inline math placeholders appear between them.
func handleWordParagraph(wp *html.Node, out *[]*doctree.Node, display, inline map[string]string) {
	if ph := findFirst(wp, displayPlaceholderTag); ph != nil {
		if xml := display[attr(ph, "data-id")]; xml != "" {
			*out = append(*out, displayMathNode(xml))
		}
		return
	}

	var children []*doctree.Node
	for _, el := range findAll(wp, "w:t", inlinePlaceholderTag) {
		switch el.Data {
		case inlinePlaceholderTag:
			if xml := inline[attr(el, "data-id")]; xml != "" {
				children = append(children, &doctree.Node{Kind: doctree.KindInlineMath, MathXML: xml})
			}
		case "w:t":
			text := textContent(el)
			if strings.TrimSpace(text) != "" {
				children = append(children, &doctree.Node{Kind: doctree.KindText, Content: text, RawHTML: text})
			}
		}
	}

	switch len(children) {
	case 0:
	case 1:
		*out = append(*out, children[0])
	default:
		*out = append(*out, &doctree.Node{Kind: doctree.KindParagraph, Children: children})
	}
}

// extractInline collects text runs, formatting spans, and inline math
// placeholders from a container element.
func extractInline(parent *html.Node, out *[]*doctree.Node, inline map[string]string) {
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			if text := normalizeText(c.Data); text != "" {
				*out = append(*out, &doctree.Node{Kind: doctree.KindText, Content: text, RawHTML: text})
			}
			continue
		}
		if c.Type != html.ElementNode {
			continue
		}

		switch {
		case c.Data == inlinePlaceholderTag:
			if xml := inline[attr(c, "data-id")]; xml != "" {
				*out = append(*out, &doctree.Node{Kind: doctree.KindInlineMath, MathXML: xml})
			}
		case formattingTags[c.Data]:
			// Keep the tag's own markup so renderers can re-derive
			// bold/italic semantics per target format.
			text := textContent(c)
			if strings.TrimSpace(text) != "" {
				*out = append(*out, &doctree.Node{Kind: doctree.KindText, Content: text, RawHTML: renderNode(c)})
			}
		default:
			var inner []*doctree.Node
			extractInline(c, &inner, inline)
			if len(inner) > 0 {
				*out = append(*out, inner...)
			} else if text := textContent(c); strings.TrimSpace(text) != "" {
				*out = append(*out, &doctree.Node{Kind: doctree.KindText, Content: text, RawHTML: renderNode(c)})
			}
		}
	}
}

func handleList(list *html.Node, out *[]*doctree.Node) {
	var children []*doctree.Node
	for c := list.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			children = append(children, &doctree.Node{
				Kind:    doctree.KindText,
				Content: strings.TrimSpace(textContent(c)),
				RawHTML: renderNode(c),
			})
		}
	}
	*out = append(*out, &doctree.Node{
		Kind:     doctree.KindList,
		Children: children,
		Ordered:  list.Data == "ol",
	})
}

func handleTable(table *html.Node, out *[]*doctree.Node, display, inline map[string]string) {
	var rows [][][]*doctree.Node
	for _, tr := range findAll(table, "tr") {
		var cells [][]*doctree.Node
		for _, cell := range findAll(tr, "td", "th") {
			var cellNodes []*doctree.Node
			extractCell(cell, &cellNodes, display, inline)
			cells = append(cells, cellNodes)
		}
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	}
	if len(rows) > 0 {
		*out = append(*out, &doctree.Node{Kind: doctree.KindTable, Rows: rows})
	}
}

// extractCell pulls the content of a <td>/<th>. Word wraps cell content in
// <p> tags; a paragraph that holds a display-math placeholder contributes
// exactly one display-math node and nothing else.
func extractCell(cell *html.Node, out *[]*doctree.Node, display, inline map[string]string) {
	paragraphs := findAll(cell, "p")
	if len(paragraphs) == 0 {
		extractInline(cell, out, inline)
		return
	}
	for _, p := range paragraphs {
		if ph := findFirst(p, displayPlaceholderTag); ph != nil {
			if xml := display[attr(ph, "data-id")]; xml != "" {
				*out = append(*out, displayMathNode(xml))
			}
			continue
		}
		extractInline(p, out, inline)
	}
}

// --- html.Node helpers ---

var whitespaceRe = regexp.MustCompile(`\s+`)

// normalizeText collapses runs of whitespace to one space and trims the ends.
func normalizeText(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func renderNode(n *html.Node) string {
	var buf strings.Builder
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}

// findFirst returns the first descendant element with the given tag name.
func findFirst(n *html.Node, name string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			if c.Data == name {
				return c
			}
			if found := findFirst(c, name); found != nil {
				return found
			}
		}
	}
	return nil
}

// findAll returns all descendant elements matching any of the names, in
// document order, without descending into matched elements.
func findAll(n *html.Node, names ...string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				matched := false
				for _, name := range names {
					if c.Data == name {
						out = append(out, c)
						matched = true
						break
					}
				}
				if matched {
					continue
				}
			}
			walk(c)
		}
	}
	walk(n)
	return out
}
