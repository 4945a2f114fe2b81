// Package ocr turns images and PDFs into LaTeX, Markdown, or plain text.
// The Gemini backend handles images; the pdftext backend extracts embedded
// text from PDFs without any model.
package ocr

import (
	"context"
	"errors"
	"fmt"
)

// Recognized output formats.
var prompts = map[string]string{
	"latex": "Convert the content of this image to LaTeX. " +
		"Use $$...$$ for display equations and $...$ for inline math. " +
		"For tables use LaTeX tabular environments. " +
		"Output only the LaTeX source, no explanation.",
	"markdown": "Convert the content of this image to Markdown. " +
		"Use $...$ for inline math and $$...$$ for display math (KaTeX/MathJax style). " +
		"For tables use GFM pipe tables. " +
		"Preserve headings and paragraph structure. " +
		"Output only the Markdown, no explanation.",
	"text": "Transcribe all text in this image accurately. " +
		"Preserve structure (headings, lists, paragraphs). " +
		"Write mathematical expressions in readable plain-text form. " +
		"Output only the transcription, no explanation.",
}

var (
	ErrUnknownBackend = errors.New("unknown ocr backend")
	ErrUnknownFormat  = errors.New("unknown ocr output format")
	// ErrNoAPIKey means the Gemini backend was requested without a key.
	ErrNoAPIKey = errors.New("gemini api key is not configured")
)

// Request is one OCR job.
type Request struct {
	Image    []byte
	MimeType string
	Backend  string // "gemini" or "pdftext"
	Format   string // "latex", "markdown", or "text"
}

// Service dispatches OCR jobs to the configured backends.
type Service struct {
	gemini *GeminiClient
}

func New(gemini *GeminiClient) *Service {
	return &Service{gemini: gemini}
}

// Close releases the Gemini backend's idle connections, if one is configured.
func (s *Service) Close() {
	if s.gemini != nil {
		s.gemini.Close()
	}
}

// Run executes one OCR job and returns the recognized text.
func (s *Service) Run(ctx context.Context, req Request) (string, error) {
	prompt, ok := prompts[req.Format]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
	}
	switch req.Backend {
	case "gemini":
		if s.gemini == nil {
			return "", ErrNoAPIKey
		}
		return s.gemini.Generate(ctx, req.Image, req.MimeType, prompt)
	case "pdftext":
		return PDFText(req.Image)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, req.Backend)
	}
}

// Translate rewrites recognized text in another language while keeping math
// and markup intact. Requires the Gemini backend.
func (s *Service) Translate(ctx context.Context, text, targetLanguage, format string) (string, error) {
	if s.gemini == nil {
		return "", ErrNoAPIKey
	}
	prompt := fmt.Sprintf(
		"Translate the following %s text to %s. "+
			"Preserve all math expressions ($...$, $$...$$, \\(...\\)), code, and formatting markup exactly as written. "+
			"Output only the translated text, no explanation.\n\n%s",
		format, targetLanguage, text,
	)
	return s.gemini.GenerateText(ctx, prompt)
}
