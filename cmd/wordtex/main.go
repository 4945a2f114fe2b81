// Command wordtex converts Word clipboard HTML to LaTeX, Markdown, or clean
// HTML from the command line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/wordtex/wordtex/internal/clipboard"
	"github.com/wordtex/wordtex/internal/mathbridge"
	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/render"
)

func main() {
	var (
		input      = pflag.StringP("input", "i", "", "input HTML file (default: stdin)")
		format     = pflag.StringP("format", "f", "latex", "output format: latex, markdown, html, or all")
		output     = pflag.StringP("output", "o", "", "output file (default: stdout)")
		fromClip   = pflag.Bool("clip", false, "read the system clipboard instead of a file")
		pandocPath = pflag.String("pandoc", "pandoc", "path to the pandoc binary")
		timeout    = pflag.Duration("timeout", 10*time.Second, "pandoc timeout per equation")
	)
	pflag.Parse()

	if err := run(*input, *format, *output, *fromClip, *pandocPath, *timeout); err != nil {
		fmt.Fprintln(os.Stderr, "wordtex:", err)
		os.Exit(1)
	}
}

func run(input, format, output string, fromClip bool, pandocPath string, timeout time.Duration) error {
	ctx := context.Background()

	var raw string
	switch {
	case fromClip:
		provider := &clipboard.CommandProvider{}
		html, err := provider.ReadHTML(ctx)
		if err != nil {
			return err
		}
		raw = html
	case input != "":
		data, err := os.ReadFile(input)
		if err != nil {
			return err
		}
		raw = clipboard.DecodeCFHTML(string(data))
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return err
		}
		raw = clipboard.DecodeCFHTML(string(data))
	}

	runner := &pandoc.Runner{Path: pandocPath, Timeout: timeout}
	converter := render.NewConverter(mathbridge.New(runner))

	result, err := converter.Convert(ctx, raw)
	if err != nil {
		return err
	}
	for _, warning := range result.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	var text string
	switch format {
	case "latex":
		text = result.LaTeX
	case "markdown":
		text = result.Markdown
	case "html":
		text = result.HTML
	case "all":
		text = fmt.Sprintf("=== LaTeX ===\n%s\n\n=== Markdown ===\n%s\n\n=== HTML ===\n%s",
			result.LaTeX, result.Markdown, result.HTML)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if output != "" {
		return os.WriteFile(output, []byte(text+"\n"), 0o644)
	}
	fmt.Println(text)
	return nil
}
