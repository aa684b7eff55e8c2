package server

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	reelhouse "github.com/thinkscotty/reelhouse"
	"github.com/thinkscotty/reelhouse/internal/catalog"
	"github.com/thinkscotty/reelhouse/internal/config"
	"github.com/thinkscotty/reelhouse/internal/models"
	"github.com/thinkscotty/reelhouse/internal/style"
)

// Composer renders a style request. ai.Client implements it.
type Composer interface {
	Compose(ctx context.Context, req style.Request) style.Composition
}

// RenderLog exposes the recorded renders. database.DB implements it.
type RenderLog interface {
	RecentRenders(limit int) ([]models.RenderLog, error)
	GetRenderStats() (models.RenderStats, error)
}

type Server struct {
	cfg        config.Config
	catalog    *catalog.Catalog
	state      *style.State
	composer   Composer
	renders    RenderLog
	pages      *cache.Cache
	revalidate time.Duration
	shell      *template.Template
	version    string
	httpSrv    *http.Server
	bg         sync.WaitGroup
}

func New(cfg config.Config, cat *catalog.Catalog, state *style.State, composer Composer, renders RenderLog, version string) (*Server, error) {
	revalidate := time.Duration(cfg.Server.RevalidateSeconds) * time.Second
	cleanup := 10 * time.Minute
	if revalidate > 0 {
		cleanup = 2 * revalidate
	}

	s := &Server{
		cfg:        cfg,
		catalog:    cat,
		state:      state,
		composer:   composer,
		renders:    renders,
		pages:      cache.New(revalidate, cleanup),
		revalidate: revalidate,
		version:    version,
	}
	if err := s.loadTemplates(); err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return s, nil
}

// Handler returns the routed handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.routes(mux)
	return recoveryMiddleware(loggingMiddleware(mux))
}

// Start sets up routes and starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	slog.Info("Starting server", "addr", addr)
	return s.httpSrv.ListenAndServe()
}

// Shutdown stops the HTTP server and waits for background re-renders.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}
	s.bg.Wait()
	return err
}

func (s *Server) routes(mux *http.ServeMux) {
	staticFS, _ := fs.Sub(reelhouse.StaticFS, "web/static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Pages
	mux.HandleFunc("GET /{$}", s.handleListPage)
	mux.HandleFunc("GET /films/{slug}", s.handleDetailPage)

	// Public API
	mux.HandleFunc("GET /api/films/random", s.handleRandomFilm)
	mux.HandleFunc("GET /api/style", s.handleStyleGet)

	// Admin API
	mux.Handle("POST /api/style", s.requireAdmin(http.HandlerFunc(s.handleStyleUpdate)))
	mux.Handle("GET /api/config", s.requireAdmin(http.HandlerFunc(s.handleConfigGet)))
	mux.Handle("POST /api/config", s.requireAdmin(http.HandlerFunc(s.handleConfigUpdate)))
	mux.Handle("POST /api/catalog/refresh", s.requireAdmin(http.HandlerFunc(s.handleCatalogRefresh)))
	mux.Handle("GET /api/renders", s.requireAdmin(http.HandlerFunc(s.handleRenders)))
	mux.Handle("GET /api/stats", s.requireAdmin(http.HandlerFunc(s.handleStats)))
}

func (s *Server) loadTemplates() error {
	t, err := template.New("page.html").ParseFS(reelhouse.TemplateFS, "web/templates/page.html")
	if err != nil {
		return fmt.Errorf("parse page shell: %w", err)
	}
	s.shell = t
	return nil
}
