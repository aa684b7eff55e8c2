package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thinkscotty/reelhouse/internal/models"
	"github.com/thinkscotty/reelhouse/internal/style"
)

type stubProvider struct {
	comp   *style.Composition
	err    error
	panics any
	calls  atomic.Int32
	prompt atomic.Value
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Generate(_ context.Context, _ style.ProviderConfig, prompt string) (*style.Composition, error) {
	p.calls.Add(1)
	p.prompt.Store(prompt)
	if p.panics != nil {
		panic(p.panics)
	}
	return p.comp, p.err
}

type memRecorder struct {
	mu      sync.Mutex
	entries []models.RenderLog
	err     error
}

func (r *memRecorder) LogRender(_ context.Context, entry models.RenderLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return r.err
}

func (r *memRecorder) last(t *testing.T) models.RenderLog {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.entries)
	return r.entries[len(r.entries)-1]
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func testFilms() []models.Film {
	return []models.Film{
		{Slug: "vertigo-1958", Title: "Vertigo", ReleaseYear: 1958},
		{Slug: "casablanca-1942", Title: "Casablanca", ReleaseYear: 1942},
	}
}

// hookedHTML is list markup carrying every random-panel hook.
const hookedHTML = `<section data-random-panel><h2 data-random-title>Vertigo</h2><p data-random-meta>1958</p>` +
	`<p data-random-logline>A detective falls.</p><a data-random-link href="/films/vertigo-1958">Open</a>` +
	`<button data-random-trigger>Spin</button></section>`

func newTestClient(stub Provider, rec RenderRecorder, callsPerMinute int) *Client {
	state := style.NewState([]string{"mood"}, style.ProviderConfig{Provider: style.ProviderGemini, APIKey: "key"})
	c := NewClient(state, rec, callsPerMinute)
	c.providers[style.ProviderGemini] = stub
	return c
}

func TestComposeFallsBack(t *testing.T) {
	films := testFilms()
	req := style.ListRequest("mood", films, &films[0])

	tests := []struct {
		name   string
		stub   *stubProvider
		reason string
	}{
		{"provider panics", &stubProvider{panics: "boom"}, "panic"},
		{"provider errors", &stubProvider{err: errors.New("connection reset")}, "connection reset"},
		{"provider returns nothing", &stubProvider{}, ErrUnusableResponse.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			c := newTestClient(tt.stub, rec, 0)

			var got style.Composition
			require.NotPanics(t, func() { got = c.Compose(context.Background(), req) })
			require.Equal(t, style.Fallback(req), got)
			require.Equal(t, int32(1), tt.stub.calls.Load())

			entry := rec.last(t)
			require.Equal(t, models.OutcomeFallback, entry.Outcome)
			require.Contains(t, entry.Reason, tt.reason)
			require.Equal(t, "list", entry.Scope)
			require.NotEmpty(t, entry.ID)
		})
	}
}

func TestComposeUsesProviderResult(t *testing.T) {
	films := testFilms()
	req := style.DetailRequest("noir", &films[1])
	want := &style.Composition{HTML: "<article>Casablanca</article>", CSS: "article{}", Notes: []string{"warm"}}
	stub := &stubProvider{comp: want}
	rec := &memRecorder{}
	c := newTestClient(stub, rec, 0)

	got := c.Compose(context.Background(), req)
	require.Equal(t, *want, got)

	prompt, err := style.BuildPrompt(req)
	require.NoError(t, err)
	require.Equal(t, prompt, stub.prompt.Load())

	entry := rec.last(t)
	require.Equal(t, models.OutcomeProvider, entry.Outcome)
	require.Equal(t, "casablanca-1942", entry.Slug)
	require.Equal(t, "gemini", entry.Provider)
}

func TestComposeListRequiresHooks(t *testing.T) {
	films := testFilms()
	req := style.ListRequest("mood", films, &films[0])

	tests := []struct {
		name    string
		html    string
		missing string
	}{
		{"no hooks", `<section class="hero"><h1>Archive</h1><button class="cta">Browse</button></section>`, style.AttrRandomPanel},
		{"no trigger", `<section data-random-panel><h2 data-random-title>x</h2><p data-random-meta></p><p data-random-logline></p><a data-random-link href="/">go</a></section>`, style.AttrRandomTrigger},
		{"hook names only in text", `<p>data-random-panel data-random-link</p>`, style.AttrRandomLink},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &memRecorder{}
			stub := &stubProvider{comp: &style.Composition{HTML: tt.html, CSS: "section{}", Notes: []string{}}}
			c := newTestClient(stub, rec, 0)

			require.Equal(t, style.Fallback(req), c.Compose(context.Background(), req))

			entry := rec.last(t)
			require.Equal(t, models.OutcomeFallback, entry.Outcome)
			require.Contains(t, entry.Reason, ErrUnusableResponse.Error())
			require.Contains(t, entry.Reason, tt.missing)
		})
	}

	t.Run("complete hook set in mixed case", func(t *testing.T) {
		html := strings.ReplaceAll(hookedHTML, "data-random-panel", "data-Random-Panel")
		c := newTestClient(&stubProvider{comp: &style.Composition{HTML: html, Notes: []string{}}}, nil, 0)
		require.Equal(t, html, c.Compose(context.Background(), req).HTML)
	})

	t.Run("detail scope is not checked", func(t *testing.T) {
		want := &style.Composition{HTML: "<article>Vertigo</article>", Notes: []string{}}
		c := newTestClient(&stubProvider{comp: want}, nil, 0)
		require.Equal(t, *want, c.Compose(context.Background(), style.DetailRequest("noir", &films[0])))
	})
}

func TestComposeGeminiHooklessListFallsBack(t *testing.T) {
	inner, err := json.Marshal(map[string]any{
		"html":  `<section class="hero"><h1>Archive</h1><button class="cta">Browse</button></section>`,
		"css":   ".hero{}",
		"notes": []string{},
	})
	require.NoError(t, err)
	body, err := json.Marshal(geminiText(string(inner)))
	require.NoError(t, err)
	httpClient := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(bytes.NewReader(body)),
		}, nil
	})}

	rec := &memRecorder{}
	state := style.NewState([]string{"mood"}, style.ProviderConfig{Provider: style.ProviderGemini, APIKey: "key"})
	c := NewClient(state, rec, 0)
	c.providers[style.ProviderGemini] = NewGeminiProvider(httpClient)

	films := testFilms()
	req := style.ListRequest("mood", films, &films[0])
	got := c.Compose(context.Background(), req)

	require.Equal(t, style.Fallback(req), got)
	require.Empty(t, style.MissingHooks(got.HTML))
	require.Equal(t, models.OutcomeFallback, rec.last(t).Outcome)
}

func TestComposeMissingCredentialMakesNoRequest(t *testing.T) {
	var requests atomic.Int32
	httpClient := &http.Client{Transport: roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		requests.Add(1)
		return nil, errors.New("unexpected request")
	})}

	for _, id := range []style.ProviderID{style.ProviderGemini, style.ProviderOpenAI, style.ProviderOpenAICompatible} {
		t.Run(string(id), func(t *testing.T) {
			rec := &memRecorder{}
			state := style.NewState(nil, style.ProviderConfig{Provider: id})
			c := NewClient(state, rec, 0)
			c.providers[style.ProviderGemini] = NewGeminiProvider(httpClient)
			c.providers[style.ProviderOpenAI] = NewOpenAIProvider(string(style.ProviderOpenAI), httpClient)
			c.providers[style.ProviderOpenAICompatible] = NewOpenAIProvider(string(style.ProviderOpenAICompatible), httpClient)

			req := style.ListRequest("mood", testFilms(), nil)
			require.Equal(t, style.Fallback(req), c.Compose(context.Background(), req))
			require.Contains(t, rec.last(t).Reason, ErrMissingCredential.Error())
		})
	}
	require.Zero(t, requests.Load())
}

func TestComposeRateLimit(t *testing.T) {
	stub := &stubProvider{comp: &style.Composition{HTML: hookedHTML, Notes: []string{}}}
	rec := &memRecorder{}
	c := newTestClient(stub, rec, 1)
	req := style.ListRequest("mood", nil, nil)

	require.Equal(t, hookedHTML, c.Compose(context.Background(), req).HTML)
	require.Equal(t, style.Fallback(req), c.Compose(context.Background(), req))
	require.Equal(t, int32(1), stub.calls.Load())
	require.Contains(t, rec.last(t).Reason, ErrRateLimited.Error())
}

func TestComposeDetailWithoutFilm(t *testing.T) {
	stub := &stubProvider{comp: &style.Composition{HTML: "<p>never</p>"}}
	c := newTestClient(stub, nil, 0)
	req := style.DetailRequest("mood", nil)

	require.Equal(t, style.FallbackDetail(nil), c.Compose(context.Background(), req))
	require.Zero(t, stub.calls.Load())
}

func TestComposeIgnoresRecorderFailure(t *testing.T) {
	want := &style.Composition{HTML: hookedHTML, Notes: []string{}}
	rec := &memRecorder{err: errors.New("disk full")}
	c := newTestClient(&stubProvider{comp: want}, rec, 0)

	require.Equal(t, *want, c.Compose(context.Background(), style.ListRequest("mood", nil, nil)))
}

func TestResolveProviderDefaultsToGemini(t *testing.T) {
	c := NewClient(style.NewState(nil, style.ProviderConfig{}), nil, 0)
	require.Same(t, c.providers[style.ProviderGemini], c.resolveProvider("bogus"))
	require.Same(t, c.providers[style.ProviderOpenAICompatible], c.resolveProvider(style.ProviderOpenAICompatible))
}
