// Package api exposes the converter over HTTP.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/wordtex/wordtex/internal/clipboard"
	"github.com/wordtex/wordtex/internal/config"
	"github.com/wordtex/wordtex/internal/history"
	"github.com/wordtex/wordtex/internal/pandoc"
	"github.com/wordtex/wordtex/internal/render"
	"github.com/wordtex/wordtex/internal/toclip"
)

// Server is the HTTP API server.
type Server struct {
	router    chi.Router
	converter *render.Converter
	toclip    *toclip.Service
	clipboard clipboard.Provider
	store     *history.Store
	pandoc    *pandoc.Runner
	log       *slog.Logger
	cfg       config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(
	converter *render.Converter,
	toclipSvc *toclip.Service,
	clip clipboard.Provider,
	store *history.Store,
	runner *pandoc.Runner,
	log *slog.Logger,
	cfg config.Config,
) *Server {
	s := &Server{
		converter: converter,
		toclip:    toclipSvc,
		clipboard: clip,
		store:     store,
		pandoc:    runner,
		log:       log,
		cfg:       cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// The API key is optional; without one every endpoint is open.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/convert", s.handleConvertClipboard)
		r.Post("/api/convert/text", s.handleConvertText)
		r.Post("/api/convert/docx", s.handleConvertDocx)
		r.Get("/api/clipboard-info", s.handleClipboardInfo)
		r.Post("/api/to-clipboard", s.handleToClipboard)
		r.Post("/api/export/docx", s.handleExportDocx)

		r.Post("/api/ocr", s.handleOCR)
		r.Post("/api/translate", s.handleTranslate)

		r.Get("/api/history/{tab}", s.handleHistoryList)
		r.Post("/api/history", s.handleHistoryAdd)
		r.Delete("/api/history/item/{entryID}", s.handleHistoryDelete)
		r.Delete("/api/history/tab/{tab}", s.handleHistoryClear)

		r.Get("/api/settings", s.handleSettingsGet)
		r.Put("/api/settings", s.handleSettingsPut)
	})

	s.router = r
}
