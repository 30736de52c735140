package cue

import (
	"fmt"
	"strconv"
	"strings"

	"hermes/internal/services"
)

// ParseError reports the first structural error found in a cuesheet. A
// sheet with structural errors cannot yield a reliable track/time model,
// so the parser never attempts recovery.
type ParseError struct {
	Line   int // 1-based
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return services.ErrParse }

// Parse reads cuesheet text into a CueSheet. Input must already be UTF-8;
// use DecodeText for files in legacy encodings.
func Parse(text string) (*CueSheet, error) {
	p := &parser{
		sheet: &CueSheet{Rems: map[string]string{}},
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		p.ln = i + 1
		p.text = strings.TrimRight(line, "\r")
		if err := p.parseLine(p.text); err != nil {
			return nil, err
		}
	}
	p.ln = len(lines)
	if err := p.finish(); err != nil {
		return nil, err
	}
	p.sheet.resolveEnds()
	return p.sheet, nil
}

type parser struct {
	sheet *CueSheet
	ln    int
	text  string

	// section is the FILE block currently being filled; nil before the
	// first FILE command.
	section *FileSection

	track      *Track
	trackLine  int
	haveIndex  bool
	lastNumber int
	lastStart  TimeCode
}

func (p *parser) errf(format string, args ...any) error {
	return &ParseError{Line: p.ln, Text: p.text, Reason: fmt.Sprintf(format, args...)}
}

func (p *parser) parseLine(line string) error {
	command, rest := nextWord(line)
	if command == "" {
		return nil
	}

	switch strings.ToUpper(command) {
	case "REM":
		return p.parseRem(rest)
	case "TITLE":
		return p.parseTitle(rest)
	case "PERFORMER":
		return p.parsePerformer(rest)
	case "SONGWRITER":
		return p.parseSongwriter(rest)
	case "GENRE":
		return p.parseNamed("GENRE", rest)
	case "DATE":
		return p.parseNamed("DATE", rest)
	case "CATALOG":
		value, err := p.value(rest)
		if err != nil {
			return err
		}
		p.sheet.Catalog = value
		return nil
	case "FILE":
		return p.parseFile(rest)
	case "TRACK":
		return p.parseTrack(rest)
	case "INDEX":
		return p.parseIndex(rest)
	case "ISRC":
		if p.track == nil {
			return p.errf("ISRC outside of a TRACK")
		}
		value, err := p.value(rest)
		if err != nil {
			return err
		}
		p.track.ISRC = value
		return nil
	case "FLAGS":
		// Subcode flags do not affect splitting.
		return nil
	default:
		return p.errf("unknown command %q", command)
	}
}

func (p *parser) parseRem(rest string) error {
	key, remainder := nextWord(rest)
	if key == "" {
		return p.errf("REM is missing a key")
	}
	value := strings.TrimSpace(remainder)
	if unquoted, err := p.value(remainder); err == nil {
		value = unquoted
	}

	upper := strings.ToUpper(key)
	if p.track != nil {
		p.track.Rems[upper] = value
		return nil
	}
	switch upper {
	case "DATE":
		p.sheet.Date = value
	case "GENRE":
		p.sheet.Genre = value
	default:
		p.sheet.Rems[upper] = value
	}
	return nil
}

func (p *parser) parseTitle(rest string) error {
	value, err := p.value(rest)
	if err != nil {
		return err
	}
	switch {
	case p.track != nil:
		p.track.Title = value
	case p.section != nil:
		p.section.Title = value
	default:
		p.sheet.Title = value
	}
	return nil
}

func (p *parser) parsePerformer(rest string) error {
	value, err := p.value(rest)
	if err != nil {
		return err
	}
	switch {
	case p.track != nil:
		p.track.Performer = value
	case p.section != nil:
		p.section.Performer = value
	default:
		p.sheet.Performer = value
	}
	return nil
}

func (p *parser) parseSongwriter(rest string) error {
	value, err := p.value(rest)
	if err != nil {
		return err
	}
	switch {
	case p.track != nil:
		p.track.Songwriter = value
	case p.section != nil:
		p.section.Songwriter = value
	default:
		p.sheet.Songwriter = value
	}
	return nil
}

func (p *parser) parseNamed(name, rest string) error {
	value, err := p.value(rest)
	if err != nil {
		return err
	}
	if p.track != nil {
		p.track.Rems[name] = value
		return nil
	}
	if name == "GENRE" {
		p.sheet.Genre = value
	} else {
		p.sheet.Date = value
	}
	return nil
}

func (p *parser) parseFile(rest string) error {
	name, _, err := p.quotedOrWord(rest)
	if err != nil {
		return err
	}
	if name == "" {
		return p.errf("FILE is missing a file name")
	}
	if err := p.closeTrack(); err != nil {
		return err
	}
	p.sheet.Files = append(p.sheet.Files, FileSection{Name: name})
	p.section = &p.sheet.Files[len(p.sheet.Files)-1]
	p.lastStart = 0
	return nil
}

func (p *parser) parseTrack(rest string) error {
	if p.section == nil {
		return p.errf("TRACK declared before any FILE")
	}
	numberWord, _ := nextWord(rest)
	number, err := strconv.Atoi(numberWord)
	if err != nil || number < 1 {
		return p.errf("invalid track number %q", numberWord)
	}
	if number == p.lastNumber {
		return p.errf("duplicate track number %d", number)
	}
	if number < p.lastNumber {
		return p.errf("decreasing track number %d after %d", number, p.lastNumber)
	}
	if err := p.closeTrack(); err != nil {
		return err
	}
	p.track = &Track{Number: number, Rems: map[string]string{}}
	p.trackLine = p.ln
	p.haveIndex = false
	p.lastNumber = number
	return nil
}

func (p *parser) parseIndex(rest string) error {
	if p.section == nil {
		return p.errf("INDEX declared before any FILE")
	}
	if p.track == nil {
		return p.errf("INDEX declared before any TRACK")
	}
	numberWord, remainder := nextWord(rest)
	number, err := strconv.Atoi(numberWord)
	if err != nil || number < 0 {
		return p.errf("invalid index number %q", numberWord)
	}
	timeWord, _ := nextWord(remainder)
	if timeWord == "" {
		return p.errf("INDEX is missing a timecode")
	}
	tc, err := ParseTimeCode(timeWord)
	if err != nil {
		return p.errf("%s", err.Error())
	}
	switch number {
	case 0:
		p.track.Pregap = tc
		p.track.HasPregap = true
	case 1:
		if tc < p.lastStart {
			return p.errf("INDEX 01 %s is out of order: previous track starts at %s", tc, p.lastStart)
		}
		p.track.Start = tc
		p.haveIndex = true
	default:
		// Subindexes beyond 01 carry no boundary information.
	}
	return nil
}

// closeTrack validates the open track and appends it to the current
// section, resolving performer/title inheritance once.
func (p *parser) closeTrack() error {
	if p.track == nil {
		return nil
	}
	if !p.haveIndex {
		return &ParseError{
			Line:   p.trackLine,
			Text:   p.text,
			Reason: fmt.Sprintf("track %d is missing an INDEX 01", p.track.Number),
		}
	}
	track := *p.track
	if track.Performer == "" {
		track.Performer = firstNonEmpty(p.section.Performer, p.sheet.Performer)
	}
	if track.Songwriter == "" {
		track.Songwriter = firstNonEmpty(p.section.Songwriter, p.sheet.Songwriter)
	}
	if track.Title == "" {
		track.Title = p.section.Title
	}
	p.lastStart = track.Start
	p.section.Tracks = append(p.section.Tracks, track)
	p.track = nil
	return nil
}

func (p *parser) finish() error {
	if err := p.closeTrack(); err != nil {
		return err
	}
	if len(p.sheet.Files) == 0 {
		return &ParseError{Line: 1, Reason: "cuesheet is missing a FILE command"}
	}
	return nil
}

// value parses a command argument: a double-quoted string that may contain
// spaces, or an unquoted value running to end of line, trimmed.
func (p *parser) value(rest string) (string, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", p.errf("missing value")
	}
	if rest[0] != '"' {
		return rest, nil
	}
	value, trailing, err := p.quotedOrWord(rest)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(trailing) != "" {
		return "", p.errf("unexpected text after quoted value")
	}
	return value, nil
}

// quotedOrWord reads a quoted string or a single bare word and returns the
// remainder of the line. FILE uses the remainder for its type keyword.
// Inside quotes, \" \\ \n and \t are unescaped; any other backslash pair
// is kept verbatim.
func (p *parser) quotedOrWord(rest string) (string, string, error) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", "", p.errf("missing value")
	}
	if rest[0] != '"' {
		word, remainder := nextWord(rest)
		return word, remainder, nil
	}
	body := rest[1:]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '"' {
			return b.String(), body[i+1:], nil
		}
		if c == '\\' && i+1 < len(body) {
			i++
			switch next := body[i]; next {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(next)
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			continue
		}
		b.WriteByte(c)
	}
	return "", "", p.errf("unterminated double-quoted string")
}

func nextWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, ""
	}
	return s[:end], s[end:]
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
