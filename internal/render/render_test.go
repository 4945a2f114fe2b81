package render

import (
	"context"
	"encoding/json"
	"os/exec"
	"strings"
	"testing"

	"github.com/wordtex/wordtex/internal/doctree"
	"github.com/wordtex/wordtex/internal/mathbridge"
	"github.com/wordtex/wordtex/internal/pandoc"
)

func newTestConverter() *Converter {
	return NewConverter(mathbridge.New(&pandoc.Runner{}))
}

func TestConvert_EmptyInputWarns(t *testing.T) {
	c := newTestConverter()
	res, err := c.Convert(context.Background(), "")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	if res.LaTeX != "" || res.Markdown != "" || res.HTML != "" {
		t.Error("expected empty outputs for empty input")
	}
}

func TestConvert_PlainText(t *testing.T) {
	c := newTestConverter()
	res, err := c.Convert(context.Background(), "<html><body><p>Hello</p></body></html>")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if res.LaTeX != "Hello" {
		t.Errorf("LaTeX = %q", res.LaTeX)
	}
	if res.Markdown != "Hello" {
		t.Errorf("Markdown = %q", res.Markdown)
	}
	if res.HTML != "Hello" {
		t.Errorf("HTML = %q", res.HTML)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}
}

func TestConvert_BoldFormatting(t *testing.T) {
	c := newTestConverter()
	res, err := c.Convert(context.Background(), "<html><body><p>a <b>bold</b> word</p></body></html>")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, `\textbf{bold}`) {
		t.Errorf("LaTeX missing textbf: %q", res.LaTeX)
	}
	if !strings.Contains(res.Markdown, "**bold**") {
		t.Errorf("Markdown missing bold: %q", res.Markdown)
	}
}

func TestConvert_Heading(t *testing.T) {
	c := newTestConverter()
	res, err := c.Convert(context.Background(), `<html><body><h2>Title</h2></body></html>`)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, `\subsection{Title}`) {
		t.Errorf("LaTeX = %q", res.LaTeX)
	}
	if !strings.Contains(res.Markdown, "## Title") {
		t.Errorf("Markdown = %q", res.Markdown)
	}
	if !strings.Contains(res.HTML, "<h2>Title</h2>") {
		t.Errorf("HTML = %q", res.HTML)
	}
}

func TestConvert_List(t *testing.T) {
	c := newTestConverter()
	res, err := c.Convert(context.Background(), `<html><body><ol><li>one</li><li>two</li></ol></body></html>`)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, `\begin{enumerate}`) {
		t.Errorf("LaTeX = %q", res.LaTeX)
	}
	if !strings.Contains(res.Markdown, "1. one") || !strings.Contains(res.Markdown, "2. two") {
		t.Errorf("Markdown = %q", res.Markdown)
	}
	if !strings.Contains(res.HTML, "<ol><li>one</li><li>two</li></ol>") {
		t.Errorf("HTML = %q", res.HTML)
	}
}

func TestConvert_TablePaddingAndEscaping(t *testing.T) {
	c := newTestConverter()
	raw := `<html><body><table>
		<tr><td><p>Name</p></td><td><p>Value</p></td><td><p>Unit</p></td></tr>
		<tr><td><p>speed | max</p></td><td><p>3</p></td></tr>
	</table></body></html>`
	res, err := c.Convert(context.Background(), raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}

	lines := strings.Split(res.Markdown, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header, separator, one data row; got %q", res.Markdown)
	}
	// Every row must carry the same column count as the widest row.
	for i, line := range lines {
		if got := strings.Count(line, "|") - strings.Count(line, `\|`); got != 4 {
			t.Errorf("row %d has wrong delimiter count: %q", i, line)
		}
	}
	if !strings.Contains(res.Markdown, `speed \| max`) {
		t.Errorf("pipe not escaped in cell: %q", res.Markdown)
	}
	if !strings.Contains(res.LaTeX, `\begin{tabular}{lll}`) {
		t.Errorf("LaTeX = %q", res.LaTeX)
	}
	if !strings.Contains(res.LaTeX, `\hline`) {
		t.Errorf("LaTeX missing header rule: %q", res.LaTeX)
	}
	if !strings.Contains(res.HTML, "<th>Name</th>") {
		t.Errorf("HTML header row wrong: %q", res.HTML)
	}
}

func TestConvert_EscapesLaTeXSpecials(t *testing.T) {
	c := newTestConverter()
	res, err := c.Convert(context.Background(), `<html><body><p>50% of $10</p></body></html>`)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, `50\% of \$10`) {
		t.Errorf("specials not escaped: %q", res.LaTeX)
	}
}

func TestConvert_CleanHTMLStripsVendorAttrs(t *testing.T) {
	c := newTestConverter()
	raw := `<html><body><p>x <span style="mso-bidi-font-weight:bold" lang="EN-US">styled</span></p></body></html>`
	res, err := c.Convert(context.Background(), raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if strings.Contains(res.HTML, "style=") || strings.Contains(res.HTML, "lang=") {
		t.Errorf("vendor attributes survived: %q", res.HTML)
	}
}

func TestResult_JSONShape(t *testing.T) {
	res := &Result{LaTeX: "a", Markdown: "b", HTML: "c", Warnings: []string{}}
	data, err := json.Marshal(res)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for _, key := range []string{`"latex"`, `"markdown"`, `"html"`, `"warnings"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("missing key %s in %s", key, data)
		}
	}
}

func TestConvert_InlineMathEndToEnd(t *testing.T) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		t.Skip("pandoc not installed")
	}
	c := newTestConverter()
	raw := `<html><body><p>Let <m:oMath><m:r><m:t>x+1</m:t></m:r></m:oMath> hold.</p></body></html>`
	res, err := c.Convert(context.Background(), raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, "$") {
		t.Errorf("inline math delimiters missing: %q", res.LaTeX)
	}
	if !strings.Contains(res.HTML, `class="math inline"`) {
		t.Errorf("HTML math span missing: %q", res.HTML)
	}
}

func TestConvert_MultiRowDisplayMathUsesAligned(t *testing.T) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		t.Skip("pandoc not installed")
	}
	c := newTestConverter()
	raw := `<html><body><p><m:oMathPara>` +
		`<m:oMath><m:r><m:t>x=1</m:t></m:r></m:oMath>` +
		`<m:oMath><m:r><m:t>y=2</m:t></m:r></m:oMath>` +
		`</m:oMathPara></p></body></html>`
	res, err := c.Convert(context.Background(), raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, `\begin{aligned}`) || !strings.Contains(res.LaTeX, `\end{aligned}`) {
		t.Errorf("LaTeX missing alignment environment: %q", res.LaTeX)
	}
	if !strings.Contains(res.Markdown, `\begin{aligned}`) {
		t.Errorf("Markdown missing alignment environment: %q", res.Markdown)
	}
	if !strings.Contains(res.HTML, `class="math display"`) {
		t.Errorf("HTML display block missing: %q", res.HTML)
	}
}

func TestConvert_EquationArrayUsesAligned(t *testing.T) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		t.Skip("pandoc not installed")
	}
	c := newTestConverter()
	raw := `<html><body><p><m:oMathPara><m:oMath><m:eqArr>` +
		`<m:e><m:r><m:t>a=b</m:t></m:r></m:e>` +
		`<m:e><m:r><m:t>c=d</m:t></m:r></m:e>` +
		`</m:eqArr></m:oMath></m:oMathPara></p></body></html>`
	res, err := c.Convert(context.Background(), raw)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if !strings.Contains(res.LaTeX, `\begin{aligned}`) {
		t.Errorf("LaTeX missing alignment environment: %q", res.LaTeX)
	}
	if !strings.Contains(res.Markdown, `\begin{aligned}`) {
		t.Errorf("Markdown missing alignment environment: %q", res.Markdown)
	}
}

func TestConvert_EmptyMathNodeWarns(t *testing.T) {
	c := newTestConverter()
	nodes := []*doctree.Node{{Kind: doctree.KindInlineMath}}
	res, err := c.Render(context.Background(), nodes)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected a warning for empty math node, got %v", res.Warnings)
	}
}
