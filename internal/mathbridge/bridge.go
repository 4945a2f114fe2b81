package mathbridge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/wordtex/wordtex/internal/pandoc"
)

// Bridge converts OMML fragments to bare LaTeX math via Pandoc.
type Bridge struct {
	Pandoc *pandoc.Runner
}

func New(runner *pandoc.Runner) *Bridge {
	return &Bridge{Pandoc: runner}
}

// ToLaTeX converts one OMML fragment. The returned string carries no math
// delimiters; renderers add those per format.
//
// A missing Pandoc binary is the only hard error. On timeout or a non-zero
// exit the bridge degrades to plain-text extraction and reports degraded.
func (b *Bridge) ToLaTeX(ctx context.Context, omml string) (latex string, degraded bool, err error) {
	docxBytes, err := BuildPackage(RepairOMML(omml))
	if err != nil {
		return fallbackText(omml), true, nil
	}

	// Pandoc needs a seekable docx, so stage it in a temp file.
	tmp, err := os.CreateTemp("", "wordtex-math-*.docx")
	if err != nil {
		return "", false, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(docxBytes); err != nil {
		tmp.Close()
		return "", false, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	out, err := b.Pandoc.Run(ctx, nil, tmpPath, "-f", "docx", "-t", "latex", "--wrap=none")
	if err != nil {
		if errors.Is(err, pandoc.ErrNotInstalled) {
			return "", false, err
		}
		return fallbackText(omml), true, nil
	}

	return stripMathDelimiters(strings.TrimSpace(string(out))), false, nil
}

var (
	displayOpenRe  = regexp.MustCompile(`^\\\[`)
	displayCloseRe = regexp.MustCompile(`\\\]$`)
	inlineOpenRe   = regexp.MustCompile(`^\\\(`)
	inlineCloseRe  = regexp.MustCompile(`\\\)$`)
)

// stripMathDelimiters removes Pandoc's own top-level math delimiters.
func stripMathDelimiters(latex string) string {
	latex = displayOpenRe.ReplaceAllString(latex, "")
	latex = displayCloseRe.ReplaceAllString(latex, "")
	if strings.HasPrefix(latex, "$") && strings.HasSuffix(latex, "$") && len(latex) >= 2 {
		latex = latex[1 : len(latex)-1]
	}
	latex = inlineOpenRe.ReplaceAllString(latex, "")
	latex = inlineCloseRe.ReplaceAllString(latex, "")
	return strings.TrimSpace(latex)
}

var anyTagRe = regexp.MustCompile(`<[^>]+>`)

// fallbackText strips every tag from the raw fragment as a last resort.
func fallbackText(xml string) string {
	return strings.TrimSpace(anyTagRe.ReplaceAllString(xml, ""))
}
