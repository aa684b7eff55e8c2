package style

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidComposition is returned when decoded model output lacks the
// html/css/notes shape.
var ErrInvalidComposition = errors.New("invalid composition")

// Repairer turns model-authored markup into markup the page shell can embed.
type Repairer interface {
	Repair(html string) string
}

// TextRepairer repairs markup with textual transforms instead of a parse/serialize
// round trip. It tolerates malformed nesting and never fails.
type TextRepairer struct{}

// Repair normalizes attribute dialects and makes sure a random trigger hook exists.
func (TextRepairer) Repair(html string) string {
	return EnsureRandomTrigger(NormalizeHTML(html))
}

// DefaultRepairer is used by the provider adapters.
var DefaultRepairer Repairer = TextRepairer{}

// DecodeComposition parses a JSON object and validates it as a composition.
func DecodeComposition(data string) (*Composition, error) {
	var candidate any
	if err := json.Unmarshal([]byte(data), &candidate); err != nil {
		return nil, fmt.Errorf("decode composition: %w", err)
	}
	return FromCandidate(candidate)
}

// FromCandidate validates a decoded value. html and css must be strings and notes
// an array; non-string notes are dropped.
func FromCandidate(candidate any) (*Composition, error) {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a JSON object, got %T", ErrInvalidComposition, candidate)
	}

	html, ok := obj["html"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: html is not a string", ErrInvalidComposition)
	}
	css, ok := obj["css"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: css is not a string", ErrInvalidComposition)
	}
	rawNotes, ok := obj["notes"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: notes is not an array", ErrInvalidComposition)
	}

	notes := make([]string, 0, len(rawNotes))
	for _, n := range rawNotes {
		if s, ok := n.(string); ok {
			notes = append(notes, s)
		}
	}

	return &Composition{HTML: html, CSS: css, Notes: notes}, nil
}

var (
	openTagPattern   = regexp.MustCompile(`<[A-Za-z][A-Za-z0-9-]*(?:\s[^<>]*)?>`)
	classAttrPattern = regexp.MustCompile(`(?i)(\s)class-?name(\s*=)`)
	forAttrPattern   = regexp.MustCompile(`(?i)(\s)html-?for(\s*=)`)
	dataAttrPattern  = regexp.MustCompile(`(?i)(\s)(data-[a-z0-9_.:-]+)`)
	quotedPattern    = regexp.MustCompile(`"[^"]*"|'[^']*'`)
)

// NormalizeHTML rewrites attribute spelling variants inside opening tags:
// className/class-name become class, htmlFor/html-for become for, and data-*
// attribute names are lower-cased. Quoted attribute values are left as written.
// Running it twice yields the same result.
func NormalizeHTML(html string) string {
	return openTagPattern.ReplaceAllStringFunc(html, func(tag string) string {
		return outsideQuotes(tag, func(names string) string {
			names = classAttrPattern.ReplaceAllString(names, "${1}class${2}")
			names = forAttrPattern.ReplaceAllString(names, "${1}for${2}")
			return dataAttrPattern.ReplaceAllStringFunc(names, strings.ToLower)
		})
	})
}

// outsideQuotes applies fn to the parts of an opening tag that are not quoted
// attribute values.
func outsideQuotes(tag string, fn func(string) string) string {
	var sb strings.Builder
	last := 0
	for _, loc := range quotedPattern.FindAllStringIndex(tag, -1) {
		sb.WriteString(fn(tag[last:loc[0]]))
		sb.WriteString(tag[loc[0]:loc[1]])
		last = loc[1]
	}
	sb.WriteString(fn(tag[last:]))
	return sb.String()
}

// MissingHooks returns the ListHooks entries that no opening tag in html carries
// as an attribute. Attribute names match case-insensitively.
func MissingHooks(html string) []string {
	present := make(map[string]bool)
	for _, tag := range openTagPattern.FindAllString(html, -1) {
		outsideQuotes(tag, func(names string) string {
			for _, m := range dataAttrPattern.FindAllStringSubmatch(names, -1) {
				present[strings.ToLower(m[2])] = true
			}
			return names
		})
	}

	var missing []string
	for _, hook := range ListHooks {
		if !present[hook] {
			missing = append(missing, hook)
		}
	}
	return missing
}

var (
	selfClosingPattern = regexp.MustCompile(`(?i)<(span|button)(\s[^<>]*?)?\s*/>`)
	strayClosePattern  = regexp.MustCompile(`(?i)<(span|button)(\s[^<>]*)?>([^<>]*?)\s*/>(\s*</(?:span|button)>)?`)
	tagStripPattern    = regexp.MustCompile(`<[^>]*>`)
	roleButtonPattern  = regexp.MustCompile(`(?i)role\s*=\s*["']?button\b`)
	classValuePattern  = regexp.MustCompile(`(?i)class\s*=\s*["']([^"']*)["']`)
	hookNamePattern    = regexp.MustCompile(`(?i)data-random-[a-z-]+`)
)

// triggerKeywords mark a button-like element as the "pick another" control.
var triggerKeywords = []string{"spin", "random", "reel", "discover", "another"}

type buttonLike struct {
	tag     string
	pattern *regexp.Regexp
	always  bool
}

var buttonLikeTags = []buttonLike{
	{tag: "button", pattern: regexp.MustCompile(`(?is)<button\b([^>]*)>(.*?)</button>`), always: true},
	{tag: "a", pattern: regexp.MustCompile(`(?is)<a\b([^>]*)>(.*?)</a>`)},
	{tag: "span", pattern: regexp.MustCompile(`(?is)<span\b([^>]*)>(.*?)</span>`)},
	{tag: "div", pattern: regexp.MustCompile(`(?is)<div\b([^>]*)>(.*?)</div>`)},
}

// EnsureRandomTrigger injects the random trigger hook when the markup has none.
// Self-closing span/button forms are first expanded into open/close pairs, then
// every button-like element whose text or attributes mention a trigger keyword
// gets the hook. Markup that already carries the hook is returned unchanged.
func EnsureRandomTrigger(html string) string {
	if strings.Contains(strings.ToLower(html), AttrRandomTrigger) {
		return html
	}

	html = selfClosingPattern.ReplaceAllString(html, "<$1$2></$1>")
	html = strayClosePattern.ReplaceAllString(html, "<$1$2>$3</$1>")

	for _, bl := range buttonLikeTags {
		html = bl.pattern.ReplaceAllStringFunc(html, func(match string) string {
			m := bl.pattern.FindStringSubmatch(match)
			if m == nil {
				return match
			}
			attrs, inner := m[1], m[2]
			if !bl.always && !isButtonLike(attrs) {
				return match
			}
			if strings.Contains(strings.ToLower(attrs), AttrRandomTrigger) {
				return match
			}
			text := hookNamePattern.ReplaceAllString(attrs, "") + " " + tagStripPattern.ReplaceAllString(inner, " ")
			if !mentionsTrigger(text) {
				return match
			}
			cut := 1 + len(bl.tag)
			return match[:cut] + " " + AttrRandomTrigger + match[cut:]
		})
	}
	return html
}

func isButtonLike(attrs string) bool {
	if roleButtonPattern.MatchString(attrs) {
		return true
	}
	m := classValuePattern.FindStringSubmatch(attrs)
	if m == nil {
		return false
	}
	for _, class := range strings.Fields(strings.ToLower(m[1])) {
		if class == "btn" || class == "button" || strings.HasPrefix(class, "btn-") {
			return true
		}
	}
	return false
}

func mentionsTrigger(text string) bool {
	text = strings.ToLower(text)
	for _, kw := range triggerKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
