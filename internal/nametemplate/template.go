package nametemplate

import (
	"fmt"
	"strconv"
	"strings"

	"hermes/internal/services"
	"hermes/internal/textutil"
)

// Default is the naming scheme used when neither the configuration file nor
// the command line specifies one.
const Default = "<year> - <album>/<no>. <title>.<ext>"

// knownPlaceholders is the complete placeholder set; Validate rejects
// anything else before a single track is rendered.
var knownPlaceholders = map[string]struct{}{
	"artist":   {},
	"album":    {},
	"title":    {},
	"year":     {},
	"genre":    {},
	"no":       {},
	"ext":      {},
	"dir-name": {},
}

// TemplateError reports an invalid naming template.
type TemplateError struct {
	Template string
	Reason   string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("invalid naming template %q: %s", e.Template, e.Reason)
}

func (e *TemplateError) Unwrap() error { return services.ErrTemplate }

type token struct {
	literal bool
	text    string
}

// Template is a parsed naming template. Parsing never fails; an unclosed
// angle bracket is kept as literal text. Call Validate before rendering.
type Template struct {
	raw    string
	tokens []token
}

// Parse tokenizes a template string. Placeholder names are recorded
// lowercase so matching is case-insensitive.
func Parse(raw string) *Template {
	t := &Template{raw: raw}
	s := raw
	for len(s) > 0 {
		open := strings.IndexByte(s, '<')
		if open < 0 {
			t.tokens = append(t.tokens, token{literal: true, text: s})
			break
		}
		if open > 0 {
			t.tokens = append(t.tokens, token{literal: true, text: s[:open]})
			s = s[open:]
		}
		end := strings.IndexByte(s[1:], '>')
		if end < 0 {
			t.tokens = append(t.tokens, token{literal: true, text: s})
			break
		}
		name := strings.ToLower(s[1 : end+1])
		t.tokens = append(t.tokens, token{text: name})
		s = s[end+2:]
	}
	return t
}

// String returns the original template text.
func (t *Template) String() string { return t.raw }

// Validate checks every placeholder against the known set. It runs once up
// front so a bad template fails the run before any track is processed.
func (t *Template) Validate() error {
	if strings.TrimSpace(t.raw) == "" {
		return &TemplateError{Template: t.raw, Reason: "template is empty"}
	}
	for _, tok := range t.tokens {
		if tok.literal {
			continue
		}
		if _, ok := knownPlaceholders[tok.text]; !ok {
			return &TemplateError{
				Template: t.raw,
				Reason:   fmt.Sprintf("unknown placeholder <%s>", tok.text),
			}
		}
	}
	return nil
}

// Placeholders returns the placeholder names used by the template, in
// order of appearance, lowercased.
func (t *Template) Placeholders() []string {
	var names []string
	for _, tok := range t.tokens {
		if !tok.literal {
			names = append(names, tok.text)
		}
	}
	return names
}

// Contains reports whether the template uses the named placeholder.
func (t *Template) Contains(name string) bool {
	name = strings.ToLower(name)
	for _, tok := range t.tokens {
		if !tok.literal && tok.text == name {
			return true
		}
	}
	return false
}

// Values holds the metadata a single render consumes. Absent fields render
// as empty strings, never as omitted path components.
type Values struct {
	Artist  string
	Album   string
	Title   string
	Year    string
	Genre   string
	DirName string
	Ext     string

	// Number is the track number; NumberWidth is the digit width of the
	// highest track number in the sheet, used for zero padding.
	Number      int
	NumberWidth int
}

// Render expands the template into a relative path. It is a pure function
// of (template, values): identical inputs always produce identical output.
// Substituted values are sanitized so they stay a single path segment;
// slashes written literally in the template still create directories.
func (t *Template) Render(v Values) string {
	var b strings.Builder
	b.Grow(len(t.raw) * 2)
	for _, tok := range t.tokens {
		if tok.literal {
			b.WriteString(tok.text)
			continue
		}
		b.WriteString(textutil.SanitizeFileName(t.expand(tok.text, v)))
	}
	return textutil.SanitizePath(b.String())
}

func (t *Template) expand(name string, v Values) string {
	switch name {
	case "artist":
		return v.Artist
	case "album":
		return v.Album
	case "title":
		return v.Title
	case "year":
		return v.Year
	case "genre":
		return v.Genre
	case "dir-name":
		return v.DirName
	case "ext":
		return v.Ext
	case "no":
		width := v.NumberWidth
		if width < 1 {
			width = 1
		}
		return fmt.Sprintf("%0*d", width, v.Number)
	default:
		// Validate runs before any render; an unknown name here would be
		// a programming error.
		return ""
	}
}

// NumberWidth returns the digit width of the highest track number.
func NumberWidth(maxTrackNumber int) int {
	if maxTrackNumber < 1 {
		return 1
	}
	return len(strconv.Itoa(maxTrackNumber))
}
