package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/wordtex/wordtex/internal/clipboard"
	"github.com/wordtex/wordtex/internal/docximport"
	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/render"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	installed := s.pandoc.Installed()
	var version string
	if installed {
		version = s.pandoc.Version(r.Context())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "ok",
		"pandoc_installed": installed,
		"pandoc_version":   version,
	})
}

// handleConvertClipboard reads the system clipboard and converts its HTML.
func (s *Server) handleConvertClipboard(w http.ResponseWriter, r *http.Request) {
	raw, err := s.clipboard.ReadHTML(r.Context())
	if err != nil {
		if errors.Is(err, clipboard.ErrNoHTML) {
			jsonError(w, "clipboard does not contain HTML data", http.StatusBadRequest)
			return
		}
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.convertAndRespond(w, r, raw)
}

// handleConvertText accepts raw HTML+OMML in the request body, for callers
// without clipboard access.
func (s *Server) handleConvertText(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HTML string `json:"html"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if body.HTML == "" {
		jsonError(w, "No HTML provided", http.StatusBadRequest)
		return
	}
	s.convertAndRespond(w, r, body.HTML)
}

// handleConvertDocx converts an uploaded .docx by feeding its document part
// through the same pipeline as clipboard markup.
func (s *Server) handleConvertDocx(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".docx") {
		jsonError(w, "only .docx files are supported", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, "file exceeds max upload size", http.StatusRequestEntityTooLarge)
		return
	}

	docXML, err := docximport.DocumentXML(data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := s.converter.Convert(r.Context(), docXML)
	if err != nil {
		s.writeConvertError(w, err)
		return
	}

	// The plain-text preview feeds the history title field.
	resp := struct {
		*render.Result
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
	}{Result: result}
	title, excerpt, err := docximport.Preview(data)
	if err != nil {
		resp.Warnings = append(resp.Warnings, "Preview extraction failed: "+err.Error())
	} else {
		resp.Title, resp.Excerpt = title, excerpt
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) convertAndRespond(w http.ResponseWriter, r *http.Request, raw string) {
	result, err := s.converter.Convert(r.Context(), raw)
	if err != nil {
		s.writeConvertError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) writeConvertError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, pandoc.ErrNotInstalled) {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{
		"error":    err.Error(),
		"warnings": []string{err.Error()},
	})
}

// handleClipboardInfo reports what the clipboard currently holds, for
// debugging paste problems.
func (s *Server) handleClipboardInfo(w http.ResponseWriter, r *http.Request) {
	formats, err := s.clipboard.Formats(r.Context())
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	raw, err := s.clipboard.ReadHTML(r.Context())
	if err != nil && !errors.Is(err, clipboard.ErrNoHTML) {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"formats":  formats,
		"has_html": raw != "",
		"raw_html": raw,
	})
}
