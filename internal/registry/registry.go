// Package registry converts a raw film registry export into catalog films.
package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/thinkscotty/reelhouse/internal/models"
)

// Entry is one record of the registry export. Years arrive as numbers or strings.
type Entry struct {
	Name         string `json:"name"`
	OriginalName string `json:"originalName"`
	YearProduced any    `json:"yearProduced"`
	YearAdded    any    `json:"yearAdded"`
	Director     string `json:"director"`
}

// Decode reads a JSON array of registry entries.
func Decode(r io.Reader) ([]Entry, error) {
	var entries []Entry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode registry export: %w", err)
	}
	return entries, nil
}

// Options controls how Convert derives titles and slugs.
type Options struct {
	// RawTitles keeps titles as written in the export. Slugs are then folded to
	// ASCII without transliteration, so Cyrillic titles slug to "film-<year>",
	// and a whitespace-only originalName does not fall back to name. This keeps
	// slugs stable for catalogs built by earlier converters.
	RawTitles bool
}

// Convert turns registry entries into films. Entries without a title are
// skipped; colliding slugs get a numeric suffix starting at -2.
func Convert(entries []Entry, opts Options) []models.Film {
	films := make([]models.Film, 0, len(entries))
	slugCounts := make(map[string]int)

	for _, e := range entries {
		title := opts.title(e)
		if title == "" {
			continue
		}
		releaseYear := parseInt(e.YearProduced)

		base := opts.slug(title, releaseYear)
		n := slugCounts[base]
		slugCounts[base] = n + 1
		slug := base
		if n > 0 {
			slug = fmt.Sprintf("%s-%d", base, n+1)
		}

		films = append(films, models.Film{
			Slug:         slug,
			Title:        title,
			ReleaseYear:  releaseYear,
			RegistryYear: parseInt(e.YearAdded),
			Directors:    ParseDirectors(e.Director),
			Genres:       []string{},
			Cast:         []string{},
		})
	}
	return films
}

func (o Options) title(e Entry) string {
	if o.RawTitles {
		raw := e.OriginalName
		if raw == "" {
			raw = e.Name
		}
		return strings.TrimSpace(raw)
	}

	if title := strings.TrimSpace(Transliterate(e.OriginalName)); title != "" {
		return title
	}
	return strings.TrimSpace(Transliterate(e.Name))
}

func (o Options) slug(title string, year int) string {
	if o.RawTitles {
		return foldSlug(title, year)
	}
	return Slugify(title, year)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// asciiFold decomposes accented characters and drops whatever is not ASCII.
var asciiFold = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })),
)

// Slugify builds a URL slug from a title and optional year, e.g. "vertigo-1958".
// Cyrillic letters are transliterated first.
func Slugify(title string, year int) string {
	return foldSlug(Transliterate(title), year)
}

func foldSlug(title string, year int) string {
	folded, _, err := transform.String(asciiFold, title)
	if err != nil {
		folded = ""
	}
	slug := strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(folded), "-"), "-")
	if slug == "" {
		slug = "film"
	}
	if year > 0 {
		return fmt.Sprintf("%s-%d", slug, year)
	}
	return slug
}

var directorSeparators = []string{" & ", " and ", ";", "/", "|"}

// ParseDirectors splits a free-form director credit into names.
func ParseDirectors(raw string) []string {
	cleaned := Transliterate(raw)
	for _, sep := range directorSeparators {
		cleaned = strings.ReplaceAll(cleaned, sep, ",")
	}

	directors := []string{}
	for _, part := range strings.Split(cleaned, ",") {
		if part = strings.Trim(part, " \t\r\n."); part != "" {
			directors = append(directors, part)
		}
	}
	return directors
}

func parseInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

var cyrillic = map[rune]string{
	'А': "A", 'а': "a", 'Б': "B", 'б': "b", 'В': "V", 'в': "v",
	'Г': "G", 'г': "g", 'Д': "D", 'д': "d", 'Е': "E", 'е': "e",
	'Ё': "Yo", 'ё': "yo", 'Ж': "Zh", 'ж': "zh", 'З': "Z", 'з': "z",
	'И': "I", 'и': "i", 'Й': "Y", 'й': "y", 'К': "K", 'к': "k",
	'Л': "L", 'л': "l", 'М': "M", 'м': "m", 'Н': "N", 'н': "n",
	'О': "O", 'о': "o", 'П': "P", 'п': "p", 'Р': "R", 'р': "r",
	'С': "S", 'с': "s", 'Т': "T", 'т': "t", 'У': "U", 'у': "u",
	'Ф': "F", 'ф': "f", 'Х': "Kh", 'х': "kh", 'Ц': "Ts", 'ц': "ts",
	'Ч': "Ch", 'ч': "ch", 'Ш': "Sh", 'ш': "sh", 'Щ': "Shch", 'щ': "shch",
	'Ъ': "", 'ъ': "", 'Ы': "Y", 'ы': "y", 'Ь': "", 'ь': "",
	'Э': "E", 'э': "e", 'Ю': "Yu", 'ю': "yu", 'Я': "Ya", 'я': "ya",
	'Ә': "A", 'ә': "a", 'Ө': "O", 'ө': "o",
}

// Transliterate replaces Cyrillic letters with Latin equivalents.
func Transliterate(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if latin, ok := cyrillic[r]; ok {
			sb.WriteString(latin)
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
