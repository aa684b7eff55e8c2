package server

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/thinkscotty/reelhouse/internal/catalog"
	"github.com/thinkscotty/reelhouse/internal/style"
)

const (
	listPageKey     = "page:list"
	detailKeyPrefix = "page:film:"
)

func detailPageKey(slug string) string {
	return detailKeyPrefix + slug
}

type pageView struct {
	Title   string
	Scope   string
	HTML    template.HTML
	CSS     template.CSS
	Notes   []string
	Version string
}

func (s *Server) handleListPage(w http.ResponseWriter, r *http.Request) {
	if body, ok := s.pages.Get(listPageKey); ok {
		writePage(w, http.StatusOK, body.([]byte), "hit")
		return
	}

	body, err := s.buildListPage(r.Context())
	if err != nil {
		slog.Error("Failed to render list page", "error", err)
		http.Error(w, "Failed to load catalog", http.StatusInternalServerError)
		return
	}
	s.storePage(listPageKey, body)
	writePage(w, http.StatusOK, body, "miss")
}

func (s *Server) handleDetailPage(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	key := detailPageKey(slug)
	if body, ok := s.pages.Get(key); ok {
		writePage(w, http.StatusOK, body.([]byte), "hit")
		return
	}

	body, err := s.buildDetailPage(r.Context(), slug)
	if errors.Is(err, catalog.ErrNotFound) {
		body, err = s.renderShell("Film not found", style.ScopeDetail, style.Fallback(style.DetailRequest("", nil)))
		if err == nil {
			writePage(w, http.StatusNotFound, body, "miss")
			return
		}
	}
	if err != nil {
		slog.Error("Failed to render detail page", "slug", slug, "error", err)
		http.Error(w, "Failed to render film", http.StatusInternalServerError)
		return
	}
	s.storePage(key, body)
	writePage(w, http.StatusOK, body, "miss")
}

func (s *Server) buildListPage(ctx context.Context) ([]byte, error) {
	films, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	highlight, err := s.catalog.Random(ctx)
	if err != nil {
		return nil, err
	}

	prompt := s.state.Prompt(string(style.ScopeList), "")
	comp := s.composer.Compose(ctx, style.ListRequest(prompt, films, highlight))
	return s.renderShell("Film Registry", style.ScopeList, comp)
}

func (s *Server) buildDetailPage(ctx context.Context, slug string) ([]byte, error) {
	film, err := s.catalog.Get(ctx, slug)
	if err != nil {
		return nil, err
	}

	prompt := s.state.Prompt(string(style.ScopeDetail), film.DisplayName())
	comp := s.composer.Compose(ctx, style.DetailRequest(prompt, &film))
	return s.renderShell(film.DisplayName(), style.ScopeDetail, comp)
}

// renderShell embeds a composition into the page shell. The composition is
// trusted operator output and is not sanitized.
func (s *Server) renderShell(title string, scope style.Scope, comp style.Composition) ([]byte, error) {
	view := pageView{
		Title:   title,
		Scope:   string(scope),
		HTML:    template.HTML(comp.HTML),
		CSS:     template.CSS(comp.CSS),
		Notes:   comp.Notes,
		Version: s.version,
	}

	var buf bytes.Buffer
	if err := s.shell.ExecuteTemplate(&buf, "page.html", view); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) storePage(key string, body []byte) {
	if s.revalidate <= 0 {
		return
	}
	s.pages.Set(key, body, s.revalidate)
}

// refreshPrompt drops the pages rendered with the prompt slot for scope and
// re-renders them in the background. Other scopes are not read by any page.
func (s *Server) refreshPrompt(ctx context.Context, scope string) {
	switch scope {
	case "", string(style.ScopeList):
		s.pages.Delete(listPageKey)
		s.regenerate(ctx, listPageKey, s.buildListPage)
	case string(style.ScopeDetail):
		for key := range s.pages.Items() {
			slug, ok := strings.CutPrefix(key, detailKeyPrefix)
			if !ok {
				continue
			}
			s.pages.Delete(key)
			s.regenerate(ctx, key, func(ctx context.Context) ([]byte, error) {
				return s.buildDetailPage(ctx, slug)
			})
		}
	}
}

// regenerate renders a page in the background so the next visitor gets a warm cache.
func (s *Server) regenerate(ctx context.Context, key string, build func(context.Context) ([]byte, error)) {
	if s.revalidate <= 0 {
		return
	}
	s.bg.Add(1)
	go func() {
		defer s.bg.Done()
		body, err := build(ctx)
		if err != nil {
			slog.Warn("Background re-render failed", "page", key, "error", err)
			return
		}
		s.storePage(key, body)
		slog.Debug("Page re-rendered", "page", key)
	}()
}

func writePage(w http.ResponseWriter, status int, body []byte, cacheState string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Render-Cache", cacheState)
	w.WriteHeader(status)
	w.Write(body)
}
