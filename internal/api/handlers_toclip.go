package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/toclip"
)

// handleToClipboard converts LaTeX or Markdown text and writes the result
// to the system clipboard as rich content.
func (s *Server) handleToClipboard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text   string `json:"text"`
		Format string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	body.Text = strings.TrimSpace(body.Text)
	if body.Text == "" {
		jsonError(w, "No text provided", http.StatusBadRequest)
		return
	}
	if body.Format == "" {
		body.Format = "markdown"
	}

	result, err := s.toclip.Send(r.Context(), body.Text, body.Format)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, toclip.ErrUnsupportedFormat) {
			code = http.StatusBadRequest
		}
		if errors.Is(err, pandoc.ErrNotInstalled) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleExportDocx converts Markdown or LaTeX to a .docx download.
func (s *Server) handleExportDocx(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text   string `json:"text"`
		Format string `json:"format"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	body.Text = strings.TrimSpace(body.Text)
	if body.Text == "" {
		jsonError(w, "No text provided", http.StatusBadRequest)
		return
	}
	if body.Format != "markdown" && body.Format != "latex" {
		jsonError(w, "invalid format: "+body.Format, http.StatusBadRequest)
		return
	}

	// Pandoc cannot write docx to stdout, so go through a temp file.
	tmp, err := os.CreateTemp("", "wordtex-export-*.docx")
	if err != nil {
		jsonError(w, "create temp file: "+err.Error(), http.StatusInternalServerError)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	exporter := &pandoc.Runner{Path: s.pandoc.Path, Timeout: s.cfg.ExportTimeout}
	_, err = exporter.Run(r.Context(), []byte(body.Text), "-f", body.Format, "-t", "docx", "-o", tmpPath)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, pandoc.ErrNotInstalled) {
			code = http.StatusServiceUnavailable
		}
		jsonError(w, err.Error(), code)
		return
	}

	docxBytes, err := os.ReadFile(tmpPath)
	if err != nil {
		jsonError(w, "read exported file: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
	w.Header().Set("Content-Disposition", `attachment; filename="output.docx"`)
	w.Write(docxBytes)
}
