package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/subosito/gotenv"

	"github.com/thinkscotty/reelhouse/internal/ai"
	"github.com/thinkscotty/reelhouse/internal/auth"
	"github.com/thinkscotty/reelhouse/internal/catalog"
	"github.com/thinkscotty/reelhouse/internal/config"
	"github.com/thinkscotty/reelhouse/internal/database"
	"github.com/thinkscotty/reelhouse/internal/registry"
	"github.com/thinkscotty/reelhouse/internal/scheduler"
	"github.com/thinkscotty/reelhouse/internal/server"
	"github.com/thinkscotty/reelhouse/internal/style"
	"github.com/thinkscotty/reelhouse/internal/wikipedia"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	presetsPath := flag.String("presets", "", "Path to list prompt presets (overrides config)")
	importPath := flag.String("import", "", "Import a registry export JSON file and exit")
	rawTitles := flag.Bool("raw-titles", false, "With -import, keep titles untransliterated and fold slugs to ASCII only")
	doEnrich := flag.Bool("enrich", false, "Fill empty film summaries from Wikipedia and exit")
	hashPassword := flag.String("hash-password", "", "Print a bcrypt hash for the admin password and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Reelhouse %s (built %s)\n", version, buildTime)
		os.Exit(0)
	}

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
		fmt.Println(hash)
		os.Exit(0)
	}

	if err := gotenv.Load(*envPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Error("Failed to load env file", "path", *envPath, "error", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	var logLevel slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Reelhouse", "version", version)

	// Initialize database
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	slog.Info("Database initialized", "path", cfg.Database.Path)

	if *importPath != "" {
		if err := runImport(db, *importPath, registry.Options{RawTitles: *rawTitles}); err != nil {
			slog.Error("Import failed", "path", *importPath, "error", err)
			os.Exit(1)
		}
		return
	}

	if *doEnrich {
		if err := runEnrich(db); err != nil {
			slog.Error("Enrichment failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if n, err := db.SeedFilms(context.Background(), cfg.Dataset.SeedPath); err != nil {
		slog.Error("Failed to seed films", "path", cfg.Dataset.SeedPath, "error", err)
		os.Exit(1)
	} else if n > 0 {
		slog.Info("Seeded films", "count", n)
	}

	// Load list prompt presets
	if *presetsPath != "" {
		cfg.Prompts.PresetsPath = *presetsPath
	}
	presets, err := config.LoadPresets(cfg.Prompts.PresetsPath)
	if err != nil {
		slog.Error("Failed to load presets", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded prompt presets", "count", len(presets))

	// Initialize services
	state := style.NewState(presets, initialProviderConfig(cfg.AI))
	cat := catalog.New(db)
	aiClient := ai.NewClient(state, db, cfg.AI.MaxCallsPerMinute)
	sched := scheduler.New(db, cfg.Database.RenderRetentionDays)

	srv, err := server.New(cfg, cat, state, aiClient, db, version)
	if err != nil {
		slog.Error("Failed to build server", "error", err)
		os.Exit(1)
	}

	// Start scheduler in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(ctx)

	// Warm the dataset cache so the first page render does not wait on sqlite.
	if _, err := cat.Load(ctx); err != nil {
		slog.Warn("Failed to preload catalog", "error", err)
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		slog.Info("Shutting down...")
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 30*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}

// initialProviderConfig seeds the in-memory provider config from config and environment.
func initialProviderConfig(c config.AIConfig) style.ProviderConfig {
	provider := style.ProviderID(strings.ToLower(strings.TrimSpace(c.Provider)))
	if !provider.Valid() {
		slog.Warn("Unknown provider in config, using gemini", "provider", c.Provider)
		provider = style.ProviderGemini
	}
	return style.ProviderConfig{
		Provider: provider,
		APIKey:   config.APIKey(string(provider)),
		Model:    c.Model,
		BaseURL:  c.BaseURL,
	}
}

func runImport(db *database.DB, path string, opts registry.Options) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := registry.Decode(f)
	if err != nil {
		return err
	}
	films := registry.Convert(entries, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := db.UpsertFilms(ctx, films); err != nil {
		return err
	}

	fmt.Printf("Imported %d films from %d registry entries.\n", len(films), len(entries))
	return nil
}

func runEnrich(db *database.DB) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	films, err := db.ListFilms(ctx)
	if err != nil {
		return err
	}

	enriched, changed, err := wikipedia.NewEnricher(wikipedia.New()).Enrich(ctx, films)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := db.UpsertFilms(context.Background(), enriched); err != nil {
		return err
	}

	fmt.Printf("Enriched %d of %d films.\n", changed, len(films))
	return nil
}
