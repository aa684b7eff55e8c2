package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/thinkscotty/reelhouse/internal/style"
)

func (s *Server) handleRandomFilm(w http.ResponseWriter, r *http.Request) {
	film, err := s.catalog.Random(r.Context())
	if err != nil {
		slog.Error("API: failed to load catalog", "error", err)
		jsonError(w, "Failed to load catalog", http.StatusInternalServerError)
		return
	}
	if film == nil {
		jsonError(w, "No films available", http.StatusNotFound)
		return
	}
	jsonResponse(w, map[string]any{
		"film": film,
		"path": "/films/" + url.PathEscape(film.Slug),
		"meta": style.FilmMeta(*film),
	})
}

func (s *Server) handleStyleGet(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if scope == "" {
		scope = string(style.ScopeList)
	}
	jsonResponse(w, map[string]any{
		"scope":      scope,
		"prompt":     s.state.Prompt(scope, r.URL.Query().Get("name")),
		"overridden": s.state.ListOverridden(),
		"presets":    s.state.Presets(),
	})
}

func (s *Server) handleStyleUpdate(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	prompt, ok := body["prompt"].(string)
	if !ok {
		jsonError(w, "prompt is required and must be a string", http.StatusBadRequest)
		return
	}
	var scope string
	if raw, present := body["scope"]; present && raw != nil {
		if scope, ok = raw.(string); !ok {
			jsonError(w, "scope must be a string", http.StatusBadRequest)
			return
		}
	}

	// Blank prompts are accepted and ignored.
	if strings.TrimSpace(prompt) == "" {
		jsonResponse(w, map[string]any{"ok": true, "updated": false})
		return
	}
	s.state.SetPrompt(prompt, scope)

	s.refreshPrompt(context.WithoutCancel(r.Context()), scope)
	slog.Info("Style prompt updated", "scope", promptScope(scope))

	jsonResponse(w, map[string]any{
		"ok":      true,
		"updated": true,
		"scope":   promptScope(scope),
		"prompt":  s.state.Prompt(promptScope(scope), "{name}"),
	})
}

// promptScope maps the empty update scope to the slot it is read back from.
func promptScope(scope string) string {
	if scope == "" {
		return string(style.ScopeList)
	}
	return scope
}

func (s *Server) handleConfigGet(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, maskConfig(s.state.Config()))
}

func (s *Server) handleConfigUpdate(w http.ResponseWriter, r *http.Request) {
	var update style.ConfigUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		jsonError(w, "Invalid config update: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.state.SetConfig(update); err != nil {
		if errors.Is(err, style.ErrUnknownProvider) {
			jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		jsonError(w, "Failed to update config", http.StatusInternalServerError)
		return
	}

	cfg := s.state.Config()
	s.pages.Flush()
	slog.Info("Provider config updated", "provider", cfg.Provider, "model", cfg.Model)
	jsonResponse(w, maskConfig(cfg))
}

func (s *Server) handleCatalogRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Refresh(r.Context()); err != nil {
		slog.Error("API: catalog refresh failed", "error", err)
		jsonError(w, "Catalog refresh failed", http.StatusInternalServerError)
		return
	}
	s.pages.Flush()

	films, _ := s.catalog.Load(r.Context())
	jsonResponse(w, map[string]any{"ok": true, "films": len(films)})
}

func (s *Server) handleRenders(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, 200)
		}
	}

	logs, err := s.renders.RecentRenders(limit)
	if err != nil {
		slog.Error("API: failed to list renders", "error", err)
		jsonError(w, "Failed to list renders", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, map[string]any{"renders": logs})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.renders.GetRenderStats()
	if err != nil {
		slog.Error("API: failed to load stats", "error", err)
		jsonError(w, "Failed to load stats", http.StatusInternalServerError)
		return
	}
	jsonResponse(w, stats)
}

type maskedConfig struct {
	Provider style.ProviderID `json:"provider"`
	APIKey   string           `json:"apiKey"`
	HasKey   bool             `json:"hasKey"`
	Model    string           `json:"model"`
	BaseURL  string           `json:"baseUrl"`
}

func maskConfig(cfg style.ProviderConfig) maskedConfig {
	return maskedConfig{
		Provider: cfg.Provider,
		APIKey:   maskKey(cfg.APIKey),
		HasKey:   cfg.APIKey != "",
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	}
}

// maskKey keeps only the last four characters of longer keys.
func maskKey(key string) string {
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return "****"
	default:
		return "****" + key[len(key)-4:]
	}
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
