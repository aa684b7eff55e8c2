package ai

import (
	"context"
	"errors"

	"github.com/thinkscotty/reelhouse/internal/style"
)

var (
	// ErrMissingCredential means the active provider has no API key; no request is made.
	ErrMissingCredential = errors.New("provider credential not configured")
	// ErrUnusableResponse means the provider answered but no composition could be recovered.
	ErrUnusableResponse = errors.New("unusable model response")
	// ErrRateLimited means the provider call budget is exhausted for now.
	ErrRateLimited = errors.New("provider call budget exhausted")
)

// Provider is implemented by every model backend. Generate issues exactly one
// completion request and returns a repaired composition.
type Provider interface {
	Generate(ctx context.Context, cfg style.ProviderConfig, prompt string) (*style.Composition, error)
	Name() string
}
