// Package classify labels course titles as orientation-like or syllabus-like
// using a fixed table of keyword patterns, and renders plain-text previews of
// Canvas HTML bodies.
package classify

import (
	"html"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Label is a heuristic classification of a title.
type Label int

const (
	Orientation Label = iota
	Syllabus
)

func (l Label) String() string {
	switch l {
	case Orientation:
		return "orientation"
	case Syllabus:
		return "syllabus"
	default:
		return "unknown"
	}
}

// Pattern is one named heuristic. Patterns run against Normalize'd text.
type Pattern struct {
	Name  string
	Label Label
	Re    *regexp.Regexp
}

// Patterns is the full heuristic table. Any single match assigns the label.
//
// syllab\w* also matches "syllable"; that over-match is accepted.
var Patterns = []Pattern{
	pattern("orientation", Orientation, `\borientation\b`),
	pattern("start-here", Orientation, `\bstart{ws}*here\b`),
	pattern("begin-here", Orientation, `\bbegin{ws}*here\b`),
	pattern("getting-started", Orientation, `\bgetting{ws}*started\b`),
	pattern("welcome", Orientation, `\bwelcome\b`),
	pattern("read-me-first", Orientation, `\bread{ws}*me{ws}*first\b`),
	pattern("course-overview", Orientation, `\bcourse{ws}*(overview|info|information)\b`),
	pattern("policy", Orientation, `\bpolic(y|ies)\b`),
	pattern("simple-syllabus", Orientation, `\bsimple{ws}*syllabus\b`),
	pattern("smart-syllabus", Orientation, `\bsmart{ws}*syllabus\b`),
	pattern("syllabus", Syllabus, `\bsyllab\w*\b`),
}

// whitespaceClass is every Unicode whitespace rune. RE2's \s is ASCII only
// and misses \v, NEL and the line/paragraph separators.
const whitespaceClass = `[\s\p{Z}\x0b\x1c-\x1f\x{85}]`

var (
	whitespaceRe = regexp.MustCompile(whitespaceClass + `+`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
)

func pattern(name string, label Label, expr string) Pattern {
	return Pattern{
		Name:  name,
		Label: label,
		Re:    regexp.MustCompile(strings.ReplaceAll(expr, "{ws}", whitespaceClass)),
	}
}

// Normalize applies NFKC, collapses whitespace runs to one space, trims and
// lower-cases.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

// Match returns the names of every pattern the title matches, in table order.
func Match(title string) []string {
	t := Normalize(title)
	var names []string
	for _, p := range Patterns {
		if p.Re.MatchString(t) {
			names = append(names, p.Name)
		}
	}
	return names
}

// Classify returns the distinct labels the title earns, in label order.
func Classify(title string) []Label {
	t := Normalize(title)
	var seen [2]bool
	for _, p := range Patterns {
		if !seen[p.Label] && p.Re.MatchString(t) {
			seen[p.Label] = true
		}
	}
	var out []Label
	for l, ok := range seen {
		if ok {
			out = append(out, Label(l))
		}
	}
	return out
}

func has(title string, label Label) bool {
	t := Normalize(title)
	for _, p := range Patterns {
		if p.Label == label && p.Re.MatchString(t) {
			return true
		}
	}
	return false
}

// LooksLikeOrientation reports whether the title reads like a start-here or
// course-policy resource.
func LooksLikeOrientation(title string) bool { return has(title, Orientation) }

// LooksLikeSyllabus reports whether the title contains a syllab* word.
func LooksLikeSyllabus(title string) bool { return has(title, Syllabus) }

var documentExts = []string{".pdf", ".doc", ".docx"}

// HasDocumentExtension reports whether name ends in .pdf, .doc or .docx.
func HasDocumentExtension(name string) bool {
	n := strings.ToLower(name)
	for _, ext := range documentExts {
		if strings.HasSuffix(n, ext) {
			return true
		}
	}
	return false
}

// Ellipsis is appended to previews cut at the limit.
const Ellipsis = "…"

// PlainTextPreview turns tag spans into spaces, collapses whitespace, decodes
// HTML entities and trims. Text longer than limit runes is cut to limit runes
// followed by Ellipsis.
func PlainTextPreview(markup string, limit int) string {
	if markup == "" {
		return ""
	}
	txt := tagRe.ReplaceAllString(markup, " ")
	txt = strings.TrimSpace(html.UnescapeString(whitespaceRe.ReplaceAllString(txt, " ")))

	r := []rune(txt)
	if limit >= 0 && len(r) > limit {
		return string(r[:limit]) + Ellipsis
	}
	return txt
}
