package toclip

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/wordtex/wordtex/internal/clipboard"
	"github.com/wordtex/wordtex/internal/pandoc"
)

func TestPreprocessMathSpacing_LaTeXGlobal(t *testing.T) {
	in := `a\ b and $x\ y$`
	out := PreprocessMathSpacing(in, "latex")
	if strings.Contains(out, `\ `) {
		t.Errorf("escaped space survived: %q", out)
	}
	if strings.Count(out, `\text{ }`) != 2 {
		t.Errorf("expected both spaces rewritten: %q", out)
	}
}

func TestPreprocessMathSpacing_MarkdownMathOnly(t *testing.T) {
	in := `prose\ stays but $x\ y$ changes`
	out := PreprocessMathSpacing(in, "markdown")
	if !strings.Contains(out, `prose\ stays`) {
		t.Errorf("prose backslash was rewritten: %q", out)
	}
	if !strings.Contains(out, `$x\text{ }y$`) {
		t.Errorf("math span not rewritten: %q", out)
	}
}

func TestRenderPayload_UnsupportedFormat(t *testing.T) {
	s := New(&pandoc.Runner{}, nil)
	_, _, err := s.RenderPayload(context.Background(), "text", "rst")
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestRenderPayload_MarkdownFallbackWithoutPandoc(t *testing.T) {
	s := New(&pandoc.Runner{Path: "pandoc-definitely-not-installed"}, nil)
	payload, warnings, err := s.RenderPayload(context.Background(), "# Title\n\nbody text", "markdown")
	if err != nil {
		t.Fatalf("RenderPayload failed: %v", err)
	}
	if !strings.Contains(payload.HTML, "<h1") {
		t.Errorf("fallback HTML missing heading: %q", payload.HTML)
	}
	if len(warnings) != 1 {
		t.Errorf("expected degradation warning, got %v", warnings)
	}
	if payload.RTF != "" {
		t.Error("RTF should be empty without pandoc")
	}
}

func TestRenderPayload_LaTeXWithoutPandocFails(t *testing.T) {
	s := New(&pandoc.Runner{Path: "pandoc-definitely-not-installed"}, nil)
	if _, _, err := s.RenderPayload(context.Background(), `$x$`, "latex"); err == nil {
		t.Fatal("latex rendering has no fallback; expected error")
	}
}

type stubClipboard struct {
	written clipboard.Payload
}

func (s *stubClipboard) ReadHTML(ctx context.Context) (string, error) { return "", nil }
func (s *stubClipboard) Write(ctx context.Context, p clipboard.Payload) error {
	s.written = p
	return nil
}
func (s *stubClipboard) Formats(ctx context.Context) ([]string, error) { return nil, nil }

func TestSend_WritesClipboard(t *testing.T) {
	clip := &stubClipboard{}
	s := New(&pandoc.Runner{Path: "pandoc-definitely-not-installed"}, clip)
	res, err := s.Send(context.Background(), "plain **bold**", "markdown")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if clip.written.HTML == "" {
		t.Error("nothing reached the clipboard")
	}
	if len(res.FormatsWritten) == 0 || res.FormatsWritten[0] != "html" {
		t.Errorf("formats_written = %v", res.FormatsWritten)
	}
}

func TestRenderPayload_MathMLWithPandoc(t *testing.T) {
	if _, err := exec.LookPath("pandoc"); err != nil {
		t.Skip("pandoc not installed")
	}
	s := New(&pandoc.Runner{}, nil)
	payload, warnings, err := s.RenderPayload(context.Background(), `The value $x+1$ grows.`, "markdown")
	if err != nil {
		t.Fatalf("RenderPayload failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if !strings.Contains(payload.HTML, "<math") {
		t.Errorf("expected MathML output: %q", payload.HTML)
	}
	if payload.RTF == "" {
		t.Error("expected RTF alongside HTML")
	}
}
