package style

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/thinkscotty/reelhouse/internal/models"
)

// Fallback builds a composition from the request data alone, without any network
// access. The result carries every hook attribute the scope requires.
func Fallback(req Request) Composition {
	if req.Scope == ScopeDetail {
		return FallbackDetail(req.Film)
	}
	return FallbackList(req.Films, req.Highlight)
}

// FallbackList renders the catalog overview.
func FallbackList(films []models.Film, highlight *models.Film) Composition {
	var sb strings.Builder

	sb.WriteString(`<section class="rh-hero">`)
	sb.WriteString(`<p class="rh-eyebrow">National Film Registry</p>`)
	sb.WriteString(`<h1 class="rh-hero-title">The Reelhouse Archive</h1>`)
	sb.WriteString(fmt.Sprintf(`<p class="rh-hero-lede">%d films preserved for their cultural, historic and aesthetic significance.</p>`, len(films)))
	sb.WriteString(`</section>`)

	writeRandomPanel(&sb, highlight)

	sb.WriteString(`<section class="rh-grid">`)
	if len(films) == 0 {
		sb.WriteString(`<p class="rh-empty">No films in the archive yet.</p>`)
	}
	for _, f := range films {
		writeCard(&sb, f)
	}
	sb.WriteString(`</section>`)

	return Composition{HTML: sb.String(), CSS: listCSS, Notes: []string{}}
}

func writeRandomPanel(sb *strings.Builder, highlight *models.Film) {
	sb.WriteString(`<section class="rh-random" ` + AttrRandomPanel + `>`)
	if highlight == nil {
		sb.WriteString(`<h2 class="rh-random-title" ` + AttrRandomTitle + `>No film selected yet</h2>`)
		sb.WriteString(`<p class="rh-random-meta" ` + AttrRandomMeta + `></p>`)
		sb.WriteString(`<p class="rh-random-logline" ` + AttrRandomLogline + `>Spin the reel to pull a film from the archive.</p>`)
		sb.WriteString(`<a class="rh-random-link" ` + AttrRandomLink + ` href="/">Browse the archive</a>`)
	} else {
		sb.WriteString(`<h2 class="rh-random-title" ` + AttrRandomTitle + `>` + esc(highlight.Title) + `</h2>`)
		sb.WriteString(`<p class="rh-random-meta" ` + AttrRandomMeta + `>` + esc(FilmMeta(*highlight)) + `</p>`)
		sb.WriteString(`<p class="rh-random-logline" ` + AttrRandomLogline + `>` + esc(highlight.Logline) + `</p>`)
		sb.WriteString(`<a class="rh-random-link" ` + AttrRandomLink + ` href="` + filmPath(highlight.Slug) + `">View film</a>`)
	}
	sb.WriteString(`<button type="button" class="rh-random-trigger" ` + AttrRandomTrigger + `>Spin another reel</button>`)
	sb.WriteString(`</section>`)
}

func writeCard(sb *strings.Builder, f models.Film) {
	sb.WriteString(`<article class="rh-card">`)
	sb.WriteString(`<a class="rh-card-link" href="` + filmPath(f.Slug) + `">`)
	sb.WriteString(`<h3 class="rh-card-title">` + esc(f.Title) + `</h3>`)
	if meta := FilmMeta(f); meta != "" {
		sb.WriteString(`<p class="rh-card-meta">` + esc(meta) + `</p>`)
	}
	if f.Logline != "" {
		sb.WriteString(`<p class="rh-card-logline">` + esc(f.Logline) + `</p>`)
	}
	sb.WriteString(`</a></article>`)
}

// FallbackDetail renders a single film's dossier, or a not-found notice when film is nil.
func FallbackDetail(film *models.Film) Composition {
	if film == nil {
		return Composition{
			HTML:  `<section class="rh-missing"><h1>Film not found</h1><p>This title is not in the archive.</p><a href="/">Back to the archive</a></section>`,
			CSS:   detailCSS,
			Notes: []string{},
		}
	}

	var sb strings.Builder
	sb.WriteString(`<article class="rh-dossier">`)

	sb.WriteString(`<header class="rh-dossier-header">`)
	sb.WriteString(`<h1 class="rh-dossier-title">` + esc(film.Title) + `</h1>`)
	if meta := FilmMeta(*film); meta != "" {
		sb.WriteString(`<p class="rh-dossier-meta">` + esc(meta) + `</p>`)
	}
	if len(film.Directors) > 0 {
		sb.WriteString(`<p class="rh-dossier-directors">Directed by ` + esc(strings.Join(film.Directors, ", ")) + `</p>`)
	}
	if film.RegistryYear > 0 {
		sb.WriteString(fmt.Sprintf(`<p class="rh-dossier-registry">Added to the registry in %d</p>`, film.RegistryYear))
	}
	sb.WriteString(`</header>`)

	sb.WriteString(`<div class="rh-dossier-body">`)
	if film.Logline != "" {
		sb.WriteString(`<p class="rh-dossier-logline">` + esc(film.Logline) + `</p>`)
	}
	if film.Summary != "" {
		sb.WriteString(`<p class="rh-dossier-summary">` + esc(film.Summary) + `</p>`)
	}
	if film.WhyImportant != "" {
		sb.WriteString(`<section class="rh-dossier-why"><h2>Why it matters</h2><p>` + esc(film.WhyImportant) + `</p></section>`)
	}
	if len(film.Cast) > 0 {
		sb.WriteString(`<p class="rh-dossier-cast">Starring ` + esc(strings.Join(film.Cast, ", ")) + `</p>`)
	}
	sb.WriteString(`</div>`)

	sb.WriteString(`<footer class="rh-dossier-footer">`)
	if film.WatchURL != "" {
		sb.WriteString(`<a class="rh-watch" href="` + esc(film.WatchURL) + `" rel="noopener" target="_blank">Where to watch</a>`)
	}
	sb.WriteString(`<a class="rh-back" href="/">Back to the archive</a>`)
	sb.WriteString(`</footer>`)

	sb.WriteString(`</article>`)

	return Composition{HTML: sb.String(), CSS: detailCSS, Notes: []string{}}
}

// FilmMeta joins year, runtime and genres into one line.
func FilmMeta(f models.Film) string {
	var parts []string
	if f.ReleaseYear > 0 {
		parts = append(parts, fmt.Sprintf("%d", f.ReleaseYear))
	}
	if f.RuntimeMinutes > 0 {
		parts = append(parts, fmt.Sprintf("%d min", f.RuntimeMinutes))
	}
	if len(f.Genres) > 0 {
		parts = append(parts, strings.Join(f.Genres, ", "))
	}
	return strings.Join(parts, " · ")
}

func filmPath(slug string) string {
	return esc("/films/" + url.PathEscape(slug))
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

const listCSS = `.rh-hero{padding:3rem 1.5rem;text-align:center}
.rh-eyebrow{letter-spacing:.2em;text-transform:uppercase;font-size:.75rem;opacity:.7}
.rh-hero-title{font-size:2.5rem;margin:.5rem 0}
.rh-random{margin:0 auto 2rem;max-width:40rem;padding:1.5rem;border:1px solid currentColor;border-radius:.75rem}
.rh-random-meta{opacity:.75}
.rh-random-trigger{margin-top:1rem;padding:.5rem 1rem;border-radius:999px;cursor:pointer}
.rh-grid{display:grid;gap:1rem;grid-template-columns:repeat(auto-fill,minmax(16rem,1fr));padding:0 1.5rem 3rem}
.rh-card{border:1px solid rgba(127,127,127,.35);border-radius:.5rem;padding:1rem}
.rh-card-link{color:inherit;text-decoration:none}
.rh-card-meta{font-size:.85rem;opacity:.7}
.rh-empty{grid-column:1/-1;text-align:center;opacity:.7}`

const detailCSS = `.rh-dossier,.rh-missing{max-width:48rem;margin:0 auto;padding:3rem 1.5rem}
.rh-dossier-title{font-size:2.25rem;margin:0}
.rh-dossier-meta,.rh-dossier-directors,.rh-dossier-registry{opacity:.75;margin:.25rem 0}
.rh-dossier-body{margin:2rem 0;line-height:1.6}
.rh-dossier-logline{font-size:1.2rem;font-style:italic}
.rh-dossier-why{border-left:3px solid currentColor;padding-left:1rem}
.rh-dossier-footer{display:flex;gap:1rem}`
