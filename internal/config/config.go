// Package config loads server settings from the environment, with an
// optional YAML file layered underneath (env always wins).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Port string

	// Pandoc subprocess
	PandocPath    string
	PandocTimeout time.Duration
	ExportTimeout time.Duration

	// Gemini OCR (also settable at runtime through the settings store)
	GeminiAPIKey string
	GeminiModel  string

	// History database
	HistoryDB        string
	HistoryMaxPerTab int

	// HTTP
	APIKey         string
	AllowedOrigins []string
	MaxUploadBytes int64
}

// fileConfig mirrors the YAML layout. Every field is optional.
type fileConfig struct {
	Port             string   `yaml:"port"`
	PandocPath       string   `yaml:"pandoc_path"`
	PandocTimeout    string   `yaml:"pandoc_timeout"`
	ExportTimeout    string   `yaml:"export_timeout"`
	GeminiAPIKey     string   `yaml:"gemini_api_key"`
	GeminiModel      string   `yaml:"gemini_model"`
	HistoryDB        string   `yaml:"history_db"`
	HistoryMaxPerTab int      `yaml:"history_max_per_tab"`
	APIKey           string   `yaml:"api_key"`
	AllowedOrigins   []string `yaml:"allowed_origins"`
	MaxUploadBytes   int64    `yaml:"max_upload_bytes"`
}

// Load builds the configuration. When WORDTEX_CONFIG names a YAML file its
// values become the defaults; environment variables override them.
func Load() (Config, error) {
	var fc fileConfig
	if path := os.Getenv("WORDTEX_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg := Config{
		Port: envOr("PORT", or(fc.Port, "8090")),

		PandocPath:    envOr("PANDOC_PATH", or(fc.PandocPath, "pandoc")),
		PandocTimeout: envDuration("PANDOC_TIMEOUT", durationOr(fc.PandocTimeout, 10*time.Second)),
		ExportTimeout: envDuration("EXPORT_TIMEOUT", durationOr(fc.ExportTimeout, 30*time.Second)),

		GeminiAPIKey: envOr("GEMINI_API_KEY", fc.GeminiAPIKey),
		GeminiModel:  envOr("GEMINI_MODEL", or(fc.GeminiModel, "gemini-2.5-flash")),

		HistoryDB:        envOr("HISTORY_DB", or(fc.HistoryDB, "wordtex.db")),
		HistoryMaxPerTab: envInt("HISTORY_MAX_PER_TAB", intOr(fc.HistoryMaxPerTab, 50)),

		APIKey:         envOr("WORDTEX_API_KEY", fc.APIKey),
		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", int64Or(fc.MaxUploadBytes, 20971520)), // 20MB
	}

	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = fc.AllowedOrigins
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	if cfg.PandocTimeout <= 0 {
		cfg.PandocTimeout = 10 * time.Second
	}
	if cfg.ExportTimeout <= 0 {
		cfg.ExportTimeout = 30 * time.Second
	}
	if cfg.HistoryMaxPerTab <= 0 {
		cfg.HistoryMaxPerTab = 50
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port must not be empty")
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

func or(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func int64Or(v, fallback int64) int64 {
	if v != 0 {
		return v
	}
	return fallback
}

func durationOr(v string, fallback time.Duration) time.Duration {
	if v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
