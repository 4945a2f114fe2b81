// Package toclip sends LaTeX or Markdown back to the clipboard as rich
// content a word processor can paste, with math carried as MathML.
package toclip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/wordtex/wordtex/internal/clipboard"
	"github.com/wordtex/wordtex/internal/pandoc"
)

// ErrUnsupportedFormat is returned for source formats other than "latex"
// and "markdown".
var ErrUnsupportedFormat = errors.New("unsupported source format")

// pandocInput maps our source format names to Pandoc reader specs. The
// Markdown reader gets the math extensions so $...$ and \(...\) both parse.
var pandocInput = map[string]string{
	"markdown": "markdown+tex_math_dollars+tex_math_single_backslash",
	"latex":    "latex",
}

// Result reports what actually reached the clipboard.
type Result struct {
	FormatsWritten []string `json:"formats_written"`
	Warnings       []string `json:"warnings"`
}

// Service converts source text to clipboard formats. Pandoc does the heavy
// lifting; a Markdown-only fallback keeps the HTML path alive without it.
type Service struct {
	Pandoc    *pandoc.Runner
	Clipboard clipboard.Provider
}

func New(runner *pandoc.Runner, provider clipboard.Provider) *Service {
	return &Service{Pandoc: runner, Clipboard: provider}
}

// Send renders the input and writes it to the clipboard. format is "latex"
// or "markdown".
func (s *Service) Send(ctx context.Context, input, format string) (*Result, error) {
	payload, warnings, err := s.RenderPayload(ctx, input, format)
	if err != nil {
		return nil, err
	}
	res := &Result{FormatsWritten: []string{}, Warnings: warnings}
	if err := s.Clipboard.Write(ctx, payload); err != nil {
		return nil, fmt.Errorf("write clipboard: %w", err)
	}
	res.FormatsWritten = append(res.FormatsWritten, "html")
	if payload.RTF != "" {
		res.FormatsWritten = append(res.FormatsWritten, "rtf")
	}
	return res, nil
}

// RenderPayload produces the clipboard formats without touching the
// clipboard itself.
func (s *Service) RenderPayload(ctx context.Context, input, format string) (clipboard.Payload, []string, error) {
	reader, ok := pandocInput[format]
	if !ok {
		return clipboard.Payload{}, nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	input = PreprocessMathSpacing(input, format)

	var payload clipboard.Payload
	var warnings []string

	htmlOut, err := s.Pandoc.Convert(ctx, []byte(input), reader, "html", "--mathml")
	switch {
	case err == nil:
		payload.HTML = strings.TrimSpace(string(htmlOut))
	case errors.Is(err, pandoc.ErrNotInstalled) && format == "markdown":
		// Degraded path: plain Markdown rendering, math left as source text.
		var buf bytes.Buffer
		if mdErr := goldmark.Convert([]byte(input), &buf); mdErr != nil {
			return clipboard.Payload{}, nil, fmt.Errorf("render markdown: %w", mdErr)
		}
		payload.HTML = strings.TrimSpace(buf.String())
		warnings = append(warnings, "Pandoc is not installed; math was not converted to MathML.")
	default:
		return clipboard.Payload{}, nil, fmt.Errorf("render html: %w", err)
	}

	// RTF is best effort; plenty of targets are happy with HTML alone.
	rtfOut, err := s.Pandoc.Convert(ctx, []byte(input), reader, "rtf", "--standalone")
	if err == nil {
		payload.RTF = string(rtfOut)
	} else if !errors.Is(err, pandoc.ErrNotInstalled) {
		warnings = append(warnings, fmt.Sprintf("RTF rendering failed: %v", err))
	}

	return payload, warnings, nil
}

var (
	dollarMathRe   = regexp.MustCompile(`\$[^$]+\$`)
	escapedSpaceRe = regexp.MustCompile(`\\ `)
)

// PreprocessMathSpacing rewrites LaTeX escaped spaces ("\ ") as \text{ } so
// they survive the trip through MathML. In Markdown only the $...$ spans are
// touched; the rest of the document keeps its backslashes.
func PreprocessMathSpacing(input, format string) string {
	if format == "latex" {
		return escapedSpaceRe.ReplaceAllString(input, `\text{ }`)
	}
	return dollarMathRe.ReplaceAllStringFunc(input, func(m string) string {
		return escapedSpaceRe.ReplaceAllString(m, `\text{ }`)
	})
}
