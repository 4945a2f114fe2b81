// Package render walks the extracted node tree and emits the three target
// formats in one pass: LaTeX, Markdown, and clean semantic HTML.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wordtex/wordtex/internal/doctree"
	"github.com/wordtex/wordtex/internal/mathbridge"
	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/parser"
	"github.com/wordtex/wordtex/internal/postprocess"
)

// Result is the full output of one conversion. The three format strings are
// produced together; warnings collect every non-fatal issue encountered.
type Result struct {
	LaTeX    string   `json:"latex"`
	Markdown string   `json:"markdown"`
	HTML     string   `json:"html"`
	Warnings []string `json:"warnings"`
}

// Converter renders node trees. It holds no per-request state; one Converter
// may serve concurrent conversions.
type Converter struct {
	bridge *mathbridge.Bridge
}

func NewConverter(bridge *mathbridge.Bridge) *Converter {
	return &Converter{bridge: bridge}
}

// Convert parses raw clipboard HTML (or raw OOXML) and renders all formats.
// The only error it returns is the missing-Pandoc configuration error; every
// other failure is contained in the warnings list.
func (c *Converter) Convert(ctx context.Context, rawHTML string) (*Result, error) {
	nodes := parser.Parse(rawHTML)
	if len(nodes) == 0 {
		return &Result{Warnings: []string{"No content found in clipboard HTML."}}, nil
	}
	return c.Render(ctx, nodes)
}

// Render converts an already-extracted node tree.
func (c *Converter) Render(ctx context.Context, nodes []*doctree.Node) (*Result, error) {
	res := &Result{Warnings: []string{}}
	var latexParts, mdParts, htmlParts []string

	for _, n := range nodes {
		if err := c.convertNode(ctx, n, &latexParts, &mdParts, &htmlParts, &res.Warnings); err != nil {
			return nil, err
		}
	}

	res.LaTeX = joinBlocks(latexParts, "\n\n")
	res.Markdown = joinBlocks(mdParts, "\n\n")
	res.HTML = joinBlocks(htmlParts, "\n")
	return res, nil
}

func joinBlocks(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, sep))
}

func (c *Converter) convertNode(ctx context.Context, n *doctree.Node, latexParts, mdParts, htmlParts, warnings *[]string) error {
	switch n.Kind {
	case doctree.KindInlineMath:
		math, err := c.convertMath(ctx, n, warnings)
		if err != nil {
			return err
		}
		if math == "" {
			return nil
		}
		*latexParts = append(*latexParts, "$"+math+"$")
		*mdParts = append(*mdParts, "$"+math+"$")
		*htmlParts = append(*htmlParts, `<span class="math inline">\(`+math+`\)</span>`)

	case doctree.KindDisplayMath:
		math, err := c.convertMath(ctx, n, warnings)
		if err != nil {
			return err
		}
		if math == "" {
			return nil
		}
		if n.MathEnv == doctree.EnvAligned || n.MathEnv == doctree.EnvMultiline {
			*latexParts = append(*latexParts, "\\[\n\\begin{aligned}\n"+math+"\n\\end{aligned}\n\\]")
			*mdParts = append(*mdParts, "$$\n\\begin{aligned}\n"+math+"\n\\end{aligned}\n$$")
		} else {
			*latexParts = append(*latexParts, "\\[\n"+math+"\n\\]")
			*mdParts = append(*mdParts, "$$\n"+math+"\n$$")
		}
		*htmlParts = append(*htmlParts, `<div class="math display">\[`+math+`\]</div>`)

	case doctree.KindParagraph:
		var pl, pm, ph []string
		for _, child := range n.Children {
			if err := c.convertNode(ctx, child, &pl, &pm, &ph, warnings); err != nil {
				return err
			}
		}
		*latexParts = append(*latexParts, joinInline(pl))
		*mdParts = append(*mdParts, joinInline(pm))
		*htmlParts = append(*htmlParts, "<p>"+joinInline(ph)+"</p>")

	case doctree.KindTable:
		tl, tm, th, err := c.convertTable(ctx, n, warnings)
		if err != nil {
			return err
		}
		*latexParts = append(*latexParts, tl)
		*mdParts = append(*mdParts, tm)
		*htmlParts = append(*htmlParts, th)

	default:
		*latexParts = append(*latexParts, nodeToLaTeX(n))
		*mdParts = append(*mdParts, nodeToMarkdown(n))
		*htmlParts = append(*htmlParts, nodeToHTML(n))
	}
	return nil
}

func joinInline(parts []string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// convertMath runs one math node through the bridge and the postprocessor.
// Only the missing-converter configuration error propagates; everything else
// becomes a warning so one bad equation never blanks the document.
func (c *Converter) convertMath(ctx context.Context, n *doctree.Node, warnings *[]string) (string, error) {
	if n.MathXML == "" {
		*warnings = append(*warnings, "Math node has no OMML XML content.")
		return "", nil
	}
	latex, degraded, err := c.bridge.ToLaTeX(ctx, n.MathXML)
	if err != nil {
		if errors.Is(err, pandoc.ErrNotInstalled) {
			return "", err
		}
		*warnings = append(*warnings, fmt.Sprintf("Math conversion error: %v", err))
		return "", nil
	}
	if degraded {
		*warnings = append(*warnings, "Math conversion fell back to plain-text extraction.")
	}
	return postprocess.LaTeX(latex), nil
}
