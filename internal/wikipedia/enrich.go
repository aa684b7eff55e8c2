package wikipedia

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/time/rate"

	"github.com/thinkscotty/reelhouse/internal/models"
)

// Enricher fills empty descriptive fields of films from Wikipedia.
type Enricher struct {
	client  *Client
	limiter *rate.Limiter
}

// NewEnricher creates an enricher that issues at most one request per second.
func NewEnricher(client *Client) *Enricher {
	return &Enricher{client: client, limiter: rate.NewLimiter(1, 1)}
}

// Enrich returns a copy of films with empty summaries, loglines and images filled
// in where an article is found, plus the number of films changed. Lookup failures
// are logged and skipped.
func (e *Enricher) Enrich(ctx context.Context, films []models.Film) ([]models.Film, int, error) {
	out := make([]models.Film, len(films))
	copy(out, films)

	changed := 0
	for i := range out {
		f := &out[i]
		if f.Summary != "" && f.Logline != "" && f.Image != "" {
			continue
		}

		summary, err := e.lookup(ctx, *f)
		if err != nil {
			if ctx.Err() != nil {
				return out, changed, ctx.Err()
			}
			slog.Debug("No article for film", "slug", f.Slug, "error", err)
			continue
		}

		if apply(f, summary) {
			changed++
		}
	}
	return out, changed, nil
}

func (e *Enricher) lookup(ctx context.Context, f models.Film) (Summary, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return Summary{}, err
	}
	results, err := e.client.Search(ctx, SearchQuery(f), 1)
	if err != nil {
		return Summary{}, err
	}
	if len(results) == 0 {
		return Summary{}, fmt.Errorf("no search results for %q", f.Title)
	}

	if err := e.limiter.Wait(ctx); err != nil {
		return Summary{}, err
	}
	return e.client.GetSummary(ctx, results[0].Title)
}

// SearchQuery builds the article search for a film, e.g. "Vertigo 1958 film".
func SearchQuery(f models.Film) string {
	if f.ReleaseYear > 0 {
		return fmt.Sprintf("%s %d film", f.Title, f.ReleaseYear)
	}
	return f.Title + " film"
}

func apply(f *models.Film, s Summary) bool {
	changed := false
	if f.Summary == "" && s.Extract != "" {
		f.Summary = s.Extract
		changed = true
	}
	if f.Logline == "" {
		if line := firstSentence(s.Extract); line != "" {
			f.Logline = line
			changed = true
		}
	}
	if f.Image == "" && s.Thumbnail != "" {
		f.Image = s.Thumbnail
		changed = true
	}
	return changed
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i+1]
	}
	return text
}
