package mathbridge

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/wordtex/wordtex/internal/pandoc"
)

func TestStripMathDelimiters(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`\[x+1\]`, "x+1"},
		{`\(x+1\)`, "x+1"},
		{"$x+1$", "x+1"},
		{"x+1", "x+1"},
		{`\[ \frac{a}{b} \]`, `\frac{a}{b}`},
	}
	for _, c := range cases {
		if got := stripMathDelimiters(c.in); got != c.want {
			t.Errorf("stripMathDelimiters(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFallbackText(t *testing.T) {
	in := `<m:oMath><m:r><m:t>x+1</m:t></m:r></m:oMath>`
	if got := fallbackText(in); got != "x+1" {
		t.Errorf("fallbackText = %q, want %q", got, "x+1")
	}
}

func TestToLaTeX_MissingBinaryPropagates(t *testing.T) {
	b := New(&pandoc.Runner{Path: "pandoc-definitely-not-installed"})
	_, _, err := b.ToLaTeX(context.Background(), `<m:oMath><m:r><m:t>x</m:t></m:r></m:oMath>`)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestToLaTeX_SimpleEquation(t *testing.T) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		t.Skip("pandoc not installed")
	}
	b := New(&pandoc.Runner{})
	latex, degraded, err := b.ToLaTeX(context.Background(), `<m:oMath><m:r><m:t>x+1</m:t></m:r></m:oMath>`)
	if err != nil {
		t.Fatalf("ToLaTeX failed: %v", err)
	}
	if degraded {
		t.Error("conversion unexpectedly degraded")
	}
	if !strings.Contains(latex, "x") {
		t.Errorf("unexpected latex output: %q", latex)
	}
	if strings.HasPrefix(latex, `\[`) || strings.HasPrefix(latex, "$") {
		t.Errorf("delimiters were not stripped: %q", latex)
	}
}
