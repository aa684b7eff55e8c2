package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/thinkscotty/reelhouse/internal/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /w/api.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if strings.HasPrefix(r.URL.Query().Get("srsearch"), "Vertigo") {
			w.Write([]byte(`{"query":{"search":[{"title":"Vertigo (film)","pageid":1}]}}`))
			return
		}
		w.Write([]byte(`{"query":{"search":[]}}`))
	})
	mux.HandleFunc("GET /api/rest_v1/page/summary/{title}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("title") != "Vertigo_(film)" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{
			"title": "Vertigo (film)",
			"extract": "Vertigo is a 1958 psychological thriller. It was directed by Alfred Hitchcock.",
			"thumbnail": {"source": "https://upload.example/vertigo.jpg"},
			"content_urls": {"desktop": {"page": "https://en.wikipedia.org/wiki/Vertigo_(film)"}}
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnricher(srv *httptest.Server) *Enricher {
	c := New()
	c.httpClient = srv.Client()
	c.apiURL = srv.URL + "/w/api.php"
	c.restURL = srv.URL + "/api/rest_v1"
	return &Enricher{client: c, limiter: rate.NewLimiter(rate.Inf, 1)}
}

func TestGetSummary(t *testing.T) {
	e := newTestEnricher(newTestServer(t))

	s, err := e.client.GetSummary(context.Background(), "Vertigo (film)")
	require.NoError(t, err)
	require.Equal(t, "Vertigo (film)", s.Title)
	require.Equal(t, "https://upload.example/vertigo.jpg", s.Thumbnail)
	require.Equal(t, "https://en.wikipedia.org/wiki/Vertigo_(film)", s.PageURL)

	_, err = e.client.GetSummary(context.Background(), "Nothing Here")
	require.ErrorContains(t, err, "status 404")
}

func TestEnrich(t *testing.T) {
	e := newTestEnricher(newTestServer(t))

	films := []models.Film{
		{Slug: "vertigo-1958", Title: "Vertigo", ReleaseYear: 1958},
		{Slug: "lost-film", Title: "Lost Film"},
		{Slug: "complete", Title: "Vertigo", Summary: "kept", Logline: "kept", Image: "kept.jpg"},
	}

	out, changed, err := e.Enrich(context.Background(), films)
	require.NoError(t, err)
	require.Equal(t, 1, changed)

	require.Equal(t, "Vertigo is a 1958 psychological thriller. It was directed by Alfred Hitchcock.", out[0].Summary)
	require.Equal(t, "Vertigo is a 1958 psychological thriller.", out[0].Logline)
	require.Equal(t, "https://upload.example/vertigo.jpg", out[0].Image)

	require.Empty(t, out[1].Summary)
	require.Equal(t, films[2], out[2])

	// The input slice is left untouched.
	require.Empty(t, films[0].Summary)
}

func TestSearchQuery(t *testing.T) {
	require.Equal(t, "Vertigo 1958 film", SearchQuery(models.Film{Title: "Vertigo", ReleaseYear: 1958}))
	require.Equal(t, "Vertigo film", SearchQuery(models.Film{Title: "Vertigo"}))
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		film    models.Film
		summary Summary
		want    models.Film
		changed bool
	}{
		{
			name:    "fills empty fields",
			summary: Summary{Extract: "A heist goes wrong. Then worse.", Thumbnail: "t.jpg"},
			want:    models.Film{Summary: "A heist goes wrong. Then worse.", Logline: "A heist goes wrong.", Image: "t.jpg"},
			changed: true,
		},
		{
			name:    "empty article changes nothing",
			summary: Summary{},
			want:    models.Film{},
		},
		{
			name:    "thumbnail only",
			film:    models.Film{Summary: "kept", Logline: "kept"},
			summary: Summary{Thumbnail: "t.jpg"},
			want:    models.Film{Summary: "kept", Logline: "kept", Image: "t.jpg"},
			changed: true,
		},
		{
			name:    "existing values kept",
			film:    models.Film{Summary: "kept", Logline: "kept", Image: "kept.jpg"},
			summary: Summary{Extract: "New text.", Thumbnail: "t.jpg"},
			want:    models.Film{Summary: "kept", Logline: "kept", Image: "kept.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.film
			require.Equal(t, tt.changed, apply(&f, tt.summary))
			require.Equal(t, tt.want, f)
		})
	}
}
