package style

import (
	"errors"
	"fmt"
	"maps"
	"math/rand/v2"
	"strings"
	"sync/atomic"
)

// ProviderID names a model provider family.
type ProviderID string

const (
	ProviderGemini           ProviderID = "gemini"
	ProviderOpenAI           ProviderID = "openai"
	ProviderOpenAICompatible ProviderID = "openai-compatible"
)

// Valid reports whether p is one of the supported providers.
func (p ProviderID) Valid() bool {
	switch p {
	case ProviderGemini, ProviderOpenAI, ProviderOpenAICompatible:
		return true
	}
	return false
}

// ErrUnknownProvider is returned by SetConfig for providers outside the supported set.
var ErrUnknownProvider = errors.New("unknown provider")

// ProviderConfig selects and authenticates the active model provider.
type ProviderConfig struct {
	Provider ProviderID `json:"provider"`
	APIKey   string     `json:"apiKey"`
	Model    string     `json:"model,omitempty"`
	BaseURL  string     `json:"baseUrl,omitempty"`
}

// ConfigUpdate is a partial ProviderConfig; nil fields are left untouched.
type ConfigUpdate struct {
	Provider *ProviderID `json:"provider,omitempty"`
	APIKey   *string     `json:"apiKey,omitempty"`
	Model    *string     `json:"model,omitempty"`
	BaseURL  *string     `json:"baseUrl,omitempty"`
}

// ScopeDefault is the prompt slot written when SetPrompt gets no scope.
const ScopeDefault = "default"

const defaultMood = "Art-house cinema lobby: deep velvet reds, brass accents, serif headlines and generous whitespace."

// DetailTemplate is the detail-scope prompt; {name} is replaced with the film's display name.
const DetailTemplate = "Design a cinematic dossier for {name}. Let the film's era, genre and tone drive the palette, typography and layout."

type promptState struct {
	values         map[string]string
	listOverridden bool
}

// State holds the prompts and provider configuration shared by all renders.
// Updates replace the whole value, so readers always see a complete snapshot.
type State struct {
	prompts atomic.Pointer[promptState]
	config  atomic.Pointer[ProviderConfig]
	presets []string
}

// NewState creates a state seeded with the preset pool and an initial provider config.
func NewState(presets []string, cfg ProviderConfig) *State {
	var pool []string
	for _, p := range presets {
		if p = strings.TrimSpace(p); p != "" {
			pool = append(pool, p)
		}
	}
	if len(pool) == 0 {
		pool = []string{defaultMood}
	}
	if cfg.Provider == "" {
		cfg.Provider = ProviderGemini
	}

	s := &State{presets: pool}
	s.prompts.Store(&promptState{values: map[string]string{
		ScopeDefault:      pool[0],
		string(ScopeList): pool[0],
	}})
	s.config.Store(&cfg)
	return s
}

// Presets returns a copy of the list-scope preset pool.
func (s *State) Presets() []string {
	return append([]string(nil), s.presets...)
}

// Prompt returns the active prompt for a scope. The list scope picks a random
// preset until a prompt is set explicitly; the detail scope fills in name.
func (s *State) Prompt(scope, name string) string {
	ps := s.prompts.Load()

	switch scope {
	case string(ScopeList):
		return s.listPrompt(ps)
	case string(ScopeDetail):
		tmpl, ok := ps.values[string(ScopeDetail)]
		if !ok {
			tmpl = DetailTemplate
		}
		return strings.ReplaceAll(tmpl, "{name}", name)
	}

	if v, ok := ps.values[scope]; ok {
		return v
	}
	return s.listPrompt(ps)
}

func (s *State) listPrompt(ps *promptState) string {
	if ps.listOverridden {
		return ps.values[string(ScopeList)]
	}
	return s.presets[rand.IntN(len(s.presets))]
}

// ListOverridden reports whether the list prompt was set explicitly.
func (s *State) ListOverridden() bool {
	return s.prompts.Load().listOverridden
}

// SetPrompt stores a prompt for scope. Blank prompts are ignored. An empty scope
// sets both the default and list slots.
func (s *State) SetPrompt(prompt, scope string) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return
	}

	for {
		old := s.prompts.Load()
		next := &promptState{values: maps.Clone(old.values), listOverridden: old.listOverridden}

		switch scope {
		case "":
			next.values[ScopeDefault] = prompt
			next.values[string(ScopeList)] = prompt
			next.listOverridden = true
		case string(ScopeList):
			next.values[string(ScopeList)] = prompt
			next.listOverridden = true
		default:
			next.values[scope] = prompt
		}

		if s.prompts.CompareAndSwap(old, next) {
			return
		}
	}
}

// Config returns a copy of the active provider configuration.
func (s *State) Config() ProviderConfig {
	return *s.config.Load()
}

// SetConfig merges a partial update into the provider configuration.
func (s *State) SetConfig(update ConfigUpdate) error {
	if update.Provider != nil && !update.Provider.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownProvider, *update.Provider)
	}

	for {
		old := s.config.Load()
		next := *old
		if update.Provider != nil {
			next.Provider = *update.Provider
		}
		if update.APIKey != nil {
			next.APIKey = strings.TrimSpace(*update.APIKey)
		}
		if update.Model != nil {
			next.Model = strings.TrimSpace(*update.Model)
		}
		if update.BaseURL != nil {
			next.BaseURL = strings.TrimSpace(*update.BaseURL)
		}
		if s.config.CompareAndSwap(old, &next) {
			return nil
		}
	}
}
