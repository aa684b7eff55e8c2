package models

import (
	"strconv"
	"time"
)

// Film is one entry of the film catalog. Records are immutable once loaded.
type Film struct {
	Slug           string   `json:"slug"`
	Title          string   `json:"title"`
	ReleaseYear    int      `json:"releaseYear"`
	RegistryYear   int      `json:"registryYear"`
	RuntimeMinutes int      `json:"runtimeMinutes"`
	Genres         []string `json:"genres"`
	Directors      []string `json:"directors"`
	Cast           []string `json:"cast"`
	Logline        string   `json:"logline"`
	Summary        string   `json:"summary"`
	WhyImportant   string   `json:"whyImportant"`
	WatchURL       string   `json:"watchUrl"`
	Image          string   `json:"image"`
}

// DisplayName is the title with the release year appended when known.
func (f Film) DisplayName() string {
	if f.ReleaseYear > 0 {
		return f.Title + " (" + strconv.Itoa(f.ReleaseYear) + ")"
	}
	return f.Title
}

// RenderLog records how a single page render was resolved.
type RenderLog struct {
	ID         string    `json:"id"`
	Scope      string    `json:"scope"`
	Slug       string    `json:"slug,omitempty"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model,omitempty"`
	Outcome    string    `json:"outcome"` // "provider" or "fallback"
	Reason     string    `json:"reason,omitempty"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// Render outcomes.
const (
	OutcomeProvider = "provider"
	OutcomeFallback = "fallback"
)

type RenderStats struct {
	TotalRenders    int   `json:"total_renders"`
	ProviderRenders int   `json:"provider_renders"`
	FallbackRenders int   `json:"fallback_renders"`
	TotalFilms      int   `json:"total_films"`
	DatabaseSize    int64 `json:"database_size_bytes"`
}
