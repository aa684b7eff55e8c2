package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/thinkscotty/reelhouse/internal/models"
	"github.com/thinkscotty/reelhouse/internal/style"
)

// RenderRecorder stores a record of each render. The database implements it.
type RenderRecorder interface {
	LogRender(ctx context.Context, entry models.RenderLog) error
}

// Client is the composition entry point. It picks the provider named by the
// shared state, calls it once, and falls back to the deterministic rendering
// whenever the provider path does not produce a composition.
type Client struct {
	state     *style.State
	providers map[style.ProviderID]Provider
	limiter   *rate.Limiter
	recorder  RenderRecorder
}

// NewClient creates a client with the Gemini and OpenAI-compatible providers.
// callsPerMinute <= 0 disables the provider call budget; recorder may be nil.
func NewClient(state *style.State, recorder RenderRecorder, callsPerMinute int) *Client {
	httpClient := &http.Client{}
	c := &Client{
		state: state,
		providers: map[style.ProviderID]Provider{
			style.ProviderGemini:           NewGeminiProvider(httpClient),
			style.ProviderOpenAI:           NewOpenAIProvider(string(style.ProviderOpenAI), httpClient),
			style.ProviderOpenAICompatible: NewOpenAIProvider(string(style.ProviderOpenAICompatible), httpClient),
		},
		recorder: recorder,
	}
	if callsPerMinute > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(callsPerMinute)), callsPerMinute)
	}
	return c
}

// resolveProvider returns the provider for id, defaulting to Gemini.
func (c *Client) resolveProvider(id style.ProviderID) Provider {
	if p, ok := c.providers[id]; ok {
		return p
	}
	return c.providers[style.ProviderGemini]
}

// Compose renders req. It always returns a composition: any provider failure,
// including a panic, yields the fallback rendering.
func (c *Client) Compose(ctx context.Context, req style.Request) style.Composition {
	start := time.Now()
	cfg := c.state.Config()
	fallback := style.Fallback(req)

	entry := models.RenderLog{
		ID:       uuid.NewString(),
		Scope:    string(req.Scope),
		Provider: string(cfg.Provider),
		Model:    cfg.Model,
	}
	if req.Film != nil {
		entry.Slug = req.Film.Slug
	}

	comp, err := c.generate(ctx, cfg, req)

	result := fallback
	switch {
	case err == nil:
		entry.Outcome = models.OutcomeProvider
		result = *comp
	case errors.Is(err, ErrMissingCredential):
		entry.Outcome = models.OutcomeFallback
		entry.Reason = err.Error()
		slog.Debug("No provider credential, using fallback", "scope", req.Scope, "provider", cfg.Provider)
	default:
		entry.Outcome = models.OutcomeFallback
		entry.Reason = err.Error()
		slog.Warn("Provider render failed, using fallback", "scope", req.Scope, "provider", cfg.Provider, "error", err)
	}

	entry.DurationMs = time.Since(start).Milliseconds()
	c.record(ctx, entry)
	return result
}

func (c *Client) generate(ctx context.Context, cfg style.ProviderConfig, req style.Request) (comp *style.Composition, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Provider panic recovered", "provider", cfg.Provider, "panic", r)
			comp, err = nil, fmt.Errorf("provider panic: %v", r)
		}
	}()

	prompt, err := style.BuildPrompt(req)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil && !c.limiter.Allow() {
		return nil, ErrRateLimited
	}

	provider := c.resolveProvider(cfg.Provider)
	comp, err = provider.Generate(ctx, cfg, prompt)
	if err != nil {
		return nil, err
	}
	if comp == nil {
		return nil, fmt.Errorf("%w: %s returned nothing", ErrUnusableResponse, provider.Name())
	}
	if req.Scope == style.ScopeList {
		if missing := style.MissingHooks(comp.HTML); len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s output lacks %s", ErrUnusableResponse, provider.Name(), strings.Join(missing, ", "))
		}
	}
	return comp, nil
}

func (c *Client) record(ctx context.Context, entry models.RenderLog) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.LogRender(ctx, entry); err != nil {
		slog.Error("Failed to record render", "id", entry.ID, "error", err)
	}
}
