package style

import "github.com/thinkscotty/reelhouse/internal/models"

// Scope identifies which page a composition is rendered for.
type Scope string

const (
	ScopeList   Scope = "list"
	ScopeDetail Scope = "detail"
)

// Hook attributes located by client-side code to wire the random-pick panel.
const (
	AttrRandomPanel   = "data-random-panel"
	AttrRandomTitle   = "data-random-title"
	AttrRandomMeta    = "data-random-meta"
	AttrRandomLogline = "data-random-logline"
	AttrRandomLink    = "data-random-link"
	AttrRandomTrigger = "data-random-trigger"
)

// ListHooks is the full hook set every list-scope composition must carry.
var ListHooks = []string{
	AttrRandomPanel,
	AttrRandomTitle,
	AttrRandomMeta,
	AttrRandomLogline,
	AttrRandomLink,
	AttrRandomTrigger,
}

// Composition is a rendered page fragment: markup, stylesheet and designer notes.
// HTML is always a fragment, never a full document.
type Composition struct {
	HTML  string   `json:"html"`
	CSS   string   `json:"css"`
	Notes []string `json:"notes"`
}

// Request describes one render. Films and Highlight are used for the list scope,
// Film for the detail scope.
type Request struct {
	Scope     Scope
	Prompt    string
	Films     []models.Film
	Highlight *models.Film
	Film      *models.Film
}

// ListRequest builds a list-scope request.
func ListRequest(prompt string, films []models.Film, highlight *models.Film) Request {
	return Request{Scope: ScopeList, Prompt: prompt, Films: films, Highlight: highlight}
}

// DetailRequest builds a detail-scope request. film may be nil for unknown slugs.
func DetailRequest(prompt string, film *models.Film) Request {
	return Request{Scope: ScopeDetail, Prompt: prompt, Film: film}
}
