package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/wordtex/wordtex/internal/ocr"
)

// ocrService builds an OCR service with the current Gemini credentials. The
// settings store wins over the environment so key changes take effect
// without a restart.
func (s *Server) ocrService() *ocr.Service {
	apiKey := s.cfg.GeminiAPIKey
	model := s.cfg.GeminiModel
	if settings, err := s.store.Settings(); err == nil {
		if k := settings["gemini_api_key"]; k != "" {
			apiKey = k
		}
		if m := settings["gemini_model"]; m != "" {
			model = m
		}
	}
	var client *ocr.GeminiClient
	if apiKey != "" {
		client = ocr.NewGeminiClient(apiKey, model)
	}
	return ocr.New(client)
}

// handleOCR runs an uploaded image or PDF through the selected backend.
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		jsonError(w, "image is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read image", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, "image exceeds max upload size", http.StatusRequestEntityTooLarge)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}
	backend := formValueOr(r, "backend", "gemini")
	format := formValueOr(r, "format", "markdown")

	svc := s.ocrService()
	defer svc.Close()
	result, err := svc.Run(r.Context(), ocr.Request{
		Image:    data,
		MimeType: mimeType,
		Backend:  backend,
		Format:   format,
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, ocr.ErrUnknownBackend) || errors.Is(err, ocr.ErrUnknownFormat) {
			code = http.StatusBadRequest
		}
		jsonError(w, err.Error(), code)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result":  result,
		"backend": backend,
	})
}

// handleTranslate rewrites OCR output in another language via Gemini.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text           string `json:"text"`
		TargetLanguage string `json:"target_language"`
		Format         string `json:"format"`
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
	if body.TargetLanguage == "" {
		body.TargetLanguage = "English"
	}
	if body.Format == "" {
		body.Format = "markdown"
	}

	svc := s.ocrService()
	defer svc.Close()
	result, err := svc.Translate(r.Context(), body.Text, body.TargetLanguage, body.Format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": result})
}

func formValueOr(r *http.Request, key, fallback string) string {
	if v := r.FormValue(key); v != "" {
		return v
	}
	return fallback
}
