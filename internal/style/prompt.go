package style

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thinkscotty/reelhouse/internal/models"
)

// MaxPromptFilms caps how many catalog entries are embedded in a list prompt.
const MaxPromptFilms = 12

// responseContract is appended to every prompt regardless of scope.
const responseContract = `RESPONSE FORMAT:
Return ONLY a single valid JSON object with exactly these three fields:
{"html": "<markup fragment>", "css": "<stylesheet>", "notes": ["short design note", "..."]}

RULES:
- "html" is a fragment that will be embedded inside an existing page. Do NOT include <html>, <head> or <body> tags.
- Do NOT include <style> or <script> blocks; put every style rule in "css".
- Do NOT wrap the JSON in markdown code fences and do not add commentary before or after it.
- "notes" is an array of strings; use an empty array when there is nothing to add.`

// BuildPrompt composes the model instruction for a render request.
func BuildPrompt(req Request) (string, error) {
	switch req.Scope {
	case ScopeList:
		return BuildListPrompt(req.Prompt, req.Films, req.Highlight), nil
	case ScopeDetail:
		if req.Film == nil {
			return "", fmt.Errorf("detail prompt requires a film")
		}
		return BuildDetailPrompt(req.Prompt, *req.Film), nil
	default:
		return "", fmt.Errorf("unknown scope %q", req.Scope)
	}
}

// BuildListPrompt constructs the prompt for the catalog overview page.
func BuildListPrompt(mood string, films []models.Film, highlight *models.Film) string {
	var sb strings.Builder

	sb.WriteString("You are designing the landing page of a film archive that presents titles from a national film registry.\n")
	sb.WriteString(fmt.Sprintf("Creative direction: %s\n\n", strings.TrimSpace(mood)))

	subset := films
	if len(subset) > MaxPromptFilms {
		subset = subset[:MaxPromptFilms]
	}
	sb.WriteString(fmt.Sprintf("The archive holds %d films. Here are %d of them as JSON:\n", len(films), len(subset)))
	sb.WriteString(marshalFilms(subset))
	sb.WriteString("\n\n")

	if highlight != nil {
		sb.WriteString("Currently highlighted film (show it in the random panel):\n")
		sb.WriteString(marshalFilm(*highlight))
		sb.WriteString("\n\n")
	}

	sb.WriteString(`Build a hero section, a grid of film cards that link to /films/<slug>, and a "random pick" panel.

REQUIRED HOOK ATTRIBUTES (client code depends on them, keep the names exactly):
- One container element with the attribute data-random-panel.
- Inside that container: one element with data-random-title, one with data-random-meta,
  one with data-random-logline, and one link (<a>) with data-random-link.
- One <button> element with the attribute data-random-trigger that asks for another pick.

`)
	sb.WriteString(responseContract)
	return sb.String()
}

// BuildDetailPrompt constructs the prompt for a single film's dossier page.
func BuildDetailPrompt(mood string, film models.Film) string {
	var sb strings.Builder

	sb.WriteString("You are designing the detail page for one film in a national film registry archive.\n")
	sb.WriteString(fmt.Sprintf("Creative direction: %s\n\n", strings.TrimSpace(mood)))
	sb.WriteString("Film record as JSON:\n")
	sb.WriteString(marshalFilm(film))
	sb.WriteString("\n\n")

	sb.WriteString(`Present the title, year, runtime, genres and directors, then the logline and summary.
Include an external "watch" link when watchUrl is set and a link back to the catalog at /.

EMPTY FIELDS:
If a field is an empty string or an empty array (for example whyImportant or cast),
omit the section for it entirely. Never render placeholders such as "N/A", "Unknown" or "TBD".

`)
	sb.WriteString(responseContract)
	return sb.String()
}

func marshalFilms(films []models.Film) string {
	if len(films) == 0 {
		return "[]"
	}
	data, err := json.MarshalIndent(films, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}

func marshalFilm(film models.Film) string {
	data, err := json.MarshalIndent(film, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
