package ai

import (
	"fmt"
	"log/slog"

	"github.com/thinkscotty/reelhouse/internal/style"
)

// parseComposition runs raw model text through extraction, decoding and repair.
func parseComposition(provider, raw string, repairer style.Repairer) (*style.Composition, error) {
	text, ok := style.ExtractJSON(raw)
	if !ok {
		return nil, fmt.Errorf("%w: empty response from %s", ErrUnusableResponse, provider)
	}

	comp, err := style.DecodeComposition(text)
	if err != nil {
		slog.Warn("Model output is not a usable composition", "provider", provider, "error", err, "raw", raw)
		return nil, fmt.Errorf("%w from %s: %w", ErrUnusableResponse, provider, err)
	}

	comp.HTML = repairer.Repair(comp.HTML)
	return comp, nil
}
