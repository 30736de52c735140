package cue

import (
	"errors"
	"strings"
	"testing"

	"hermes/internal/services"
)

const sampleSheet = `REM GENRE "Doom Metal"
REM DATE 2003
REM COMMENT "ExactAudioCopy v0.95b4"
PERFORMER "The Gloaming"
TITLE "Long Shadows"
CATALOG 0724354688524
FILE "Long Shadows.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Nightfall"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Ashes"
    PERFORMER "The Gloaming feat. Mara"
    INDEX 00 03:28:00
    INDEX 01 03:30:00
  TRACK 03 AUDIO
    TITLE "Hollow"
    ISRC GBAYE0000351
    INDEX 01 07:45:30
`

func TestParseSampleSheet(t *testing.T) {
	sheet, err := Parse(sampleSheet)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if sheet.Title != "Long Shadows" {
		t.Errorf("album title = %q", sheet.Title)
	}
	if sheet.Performer != "The Gloaming" {
		t.Errorf("album performer = %q", sheet.Performer)
	}
	if sheet.Genre != "Doom Metal" {
		t.Errorf("genre = %q", sheet.Genre)
	}
	if sheet.Date != "2003" {
		t.Errorf("date = %q", sheet.Date)
	}
	if sheet.Catalog != "0724354688524" {
		t.Errorf("catalog = %q", sheet.Catalog)
	}
	if got := sheet.Rems["COMMENT"]; got != "ExactAudioCopy v0.95b4" {
		t.Errorf("REM COMMENT = %q", got)
	}

	if len(sheet.Files) != 1 {
		t.Fatalf("expected 1 file section, got %d", len(sheet.Files))
	}
	section := sheet.Files[0]
	if section.Name != "Long Shadows.flac" {
		t.Errorf("file name = %q", section.Name)
	}
	if len(section.Tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(section.Tracks))
	}

	first := section.Tracks[0]
	if first.Number != 1 || first.Title != "Nightfall" {
		t.Errorf("track 1 = %+v", first)
	}
	if first.Performer != "The Gloaming" {
		t.Errorf("track 1 should inherit sheet performer, got %q", first.Performer)
	}
	if !first.EndSet || first.End.String() != "03:30:00" {
		t.Errorf("track 1 end = %v (set=%v), want 03:30:00", first.End, first.EndSet)
	}

	second := section.Tracks[1]
	if second.Performer != "The Gloaming feat. Mara" {
		t.Errorf("track 2 performer override lost: %q", second.Performer)
	}
	if !second.HasPregap || second.Pregap.String() != "03:28:00" {
		t.Errorf("track 2 pregap = %v (has=%v)", second.Pregap, second.HasPregap)
	}
	if second.Start.String() != "03:30:00" {
		t.Errorf("track 2 start = %v", second.Start)
	}

	third := section.Tracks[2]
	if third.ISRC != "GBAYE0000351" {
		t.Errorf("track 3 ISRC = %q", third.ISRC)
	}
	if third.EndSet {
		t.Error("last track end must stay unresolved until the caller supplies the file length")
	}
}

// Track ends must partition each file section: every non-final track ends
// exactly where the next one starts.
func TestParseEndResolutionPartition(t *testing.T) {
	sheet, err := Parse(sampleSheet)
	if err != nil {
		t.Fatal(err)
	}
	for _, section := range sheet.Files {
		for i := 0; i+1 < len(section.Tracks); i++ {
			cur, next := section.Tracks[i], section.Tracks[i+1]
			if !cur.EndSet {
				t.Fatalf("track %d has no resolved end", cur.Number)
			}
			if cur.End != next.Start {
				t.Fatalf("track %d end %s != track %d start %s", cur.Number, cur.End, next.Number, next.Start)
			}
		}
	}
}

func TestResolveLastEnd(t *testing.T) {
	sheet, err := Parse(sampleSheet)
	if err != nil {
		t.Fatal(err)
	}
	section := &sheet.Files[0]
	total, _ := ParseTimeCode("12:00:00")
	section.ResolveLastEnd(total)

	last := section.Tracks[len(section.Tracks)-1]
	if !last.EndSet || last.End != total {
		t.Fatalf("last track end = %v (set=%v), want %s", last.End, last.EndSet, total)
	}

	// A length shorter than the last start is ignored.
	sheet2, _ := Parse(sampleSheet)
	section2 := &sheet2.Files[0]
	short, _ := ParseTimeCode("01:00:00")
	section2.ResolveLastEnd(short)
	if section2.Tracks[len(section2.Tracks)-1].EndSet {
		t.Fatal("implausibly short file length must not resolve the end")
	}
}

func TestParseMultipleFileSections(t *testing.T) {
	text := `PERFORMER "Artist"
TITLE "Album"
FILE "disc1.flac" WAVE
  TRACK 01 AUDIO
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 01 04:00:00
FILE "disc2.flac" WAVE
  TRACK 03 AUDIO
    INDEX 01 00:00:00
`
	sheet, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(sheet.Files) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sheet.Files))
	}
	if len(sheet.Files[0].Tracks) != 2 || len(sheet.Files[1].Tracks) != 1 {
		t.Fatalf("unexpected track distribution: %d/%d", len(sheet.Files[0].Tracks), len(sheet.Files[1].Tracks))
	}
	// INDEX ordering restarts per section; track 3 starting at zero is valid.
	if sheet.Files[1].Tracks[0].Start != 0 {
		t.Fatalf("track 3 start = %v", sheet.Files[1].Tracks[0].Start)
	}
	if sheet.MaxTrackNumber() != 3 {
		t.Fatalf("MaxTrackNumber = %d", sheet.MaxTrackNumber())
	}
	if sheet.TrackCount() != 3 {
		t.Fatalf("TrackCount = %d", sheet.TrackCount())
	}
}

func TestParseCaseInsensitiveCommands(t *testing.T) {
	text := "performer Artist\nfile \"a.flac\" wave\ntrack 01 audio\nindex 01 00:00:00\n"
	sheet, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if sheet.Files[0].Tracks[0].Performer != "Artist" {
		t.Fatalf("unexpected performer: %q", sheet.Files[0].Tracks[0].Performer)
	}
}

func TestParseUnquotedValueRunsToEndOfLine(t *testing.T) {
	text := "TITLE  Long Shadows  \nFILE \"a.flac\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:00\n"
	sheet, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Title != "Long Shadows" {
		t.Fatalf("unquoted title = %q", sheet.Title)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		line   int
		reason string
	}{
		{
			name:   "track before file",
			text:   "TITLE \"x\"\nTRACK 01 AUDIO\n",
			line:   2,
			reason: "TRACK declared before any FILE",
		},
		{
			name:   "index before file",
			text:   "INDEX 01 00:00:00\n",
			line:   1,
			reason: "INDEX declared before any FILE",
		},
		{
			name:   "index before track",
			text:   "FILE \"a.flac\" WAVE\nINDEX 01 00:00:00\n",
			line:   2,
			reason: "INDEX declared before any TRACK",
		},
		{
			name:   "duplicate track number",
			text:   "FILE \"a.flac\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:00\nTRACK 01 AUDIO\n",
			line:   4,
			reason: "duplicate track number 1",
		},
		{
			name:   "decreasing track number",
			text:   "FILE \"a.flac\" WAVE\nTRACK 02 AUDIO\nINDEX 01 00:00:00\nTRACK 01 AUDIO\n",
			line:   4,
			reason: "decreasing track number 1 after 2",
		},
		{
			name:   "frame component too large",
			text:   "FILE \"a.flac\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:75\n",
			line:   3,
			reason: "frame component must be below 75",
		},
		{
			name:   "index out of order",
			text:   "FILE \"a.flac\" WAVE\nTRACK 01 AUDIO\nINDEX 01 02:00:00\nTRACK 02 AUDIO\nINDEX 01 01:00:00\n",
			line:   5,
			reason: "out of order",
		},
		{
			name:   "unknown command",
			text:   "BOGUS thing\n",
			line:   1,
			reason: "unknown command",
		},
		{
			name:   "unterminated quote",
			text:   "TITLE \"unclosed\n",
			line:   1,
			reason: "unterminated double-quoted string",
		},
		{
			name:   "track without index",
			text:   "FILE \"a.flac\" WAVE\nTRACK 01 AUDIO\nTITLE \"x\"\nTRACK 02 AUDIO\nINDEX 01 00:00:00\n",
			line:   2,
			reason: "missing an INDEX 01",
		},
		{
			name:   "missing file command",
			text:   "TITLE \"x\"\nPERFORMER \"y\"\n",
			line:   1,
			reason: "missing a FILE command",
		},
		{
			name:   "invalid track number",
			text:   "FILE \"a.flac\" WAVE\nTRACK xx AUDIO\n",
			line:   2,
			reason: "invalid track number",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected parse error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("expected *ParseError, got %T: %v", err, err)
			}
			if !errors.Is(err, services.ErrParse) {
				t.Fatalf("error not tagged as parse error: %v", err)
			}
			if parseErr.Line != tt.line {
				t.Errorf("error line = %d, want %d (%v)", parseErr.Line, tt.line, err)
			}
			if !strings.Contains(parseErr.Reason, tt.reason) {
				t.Errorf("reason %q does not mention %q", parseErr.Reason, tt.reason)
			}
		})
	}
}

func TestParsePregapOnFirstTrackIsDropped(t *testing.T) {
	text := "FILE \"a.flac\" WAVE\nTRACK 01 AUDIO\nINDEX 00 00:00:00\nINDEX 01 00:02:00\nTRACK 02 AUDIO\nINDEX 01 04:00:00\n"
	sheet, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	first := sheet.Files[0].Tracks[0]
	// Audio before the first INDEX 01 belongs to no track.
	if first.Start.String() != "00:02:00" {
		t.Fatalf("first track start = %v", first.Start)
	}
	if !first.HasPregap {
		t.Fatal("pregap position should still be recorded")
	}
}

func TestParseQuotedValueEscapes(t *testing.T) {
	text := `FILE "image.flac" WAVE
  TRACK 01 AUDIO
    TITLE "She said \"go\"\tnow"
    PERFORMER "A\\B"
    INDEX 01 00:00:00
`
	sheet, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	track := sheet.Files[0].Tracks[0]
	if want := "She said \"go\"\tnow"; track.Title != want {
		t.Fatalf("title = %q, want %q", track.Title, want)
	}
	if track.Performer != `A\B` {
		t.Fatalf("performer = %q", track.Performer)
	}
}

func TestParseQuotedValueKeepsUnknownEscapes(t *testing.T) {
	text := "FILE \"C:\\music\\image.flac\" WAVE\nTRACK 01 AUDIO\nINDEX 01 00:00:00\n"
	sheet, err := Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	if got := sheet.Files[0].Name; got != `C:\music\image.flac` {
		t.Fatalf("file name = %q", got)
	}
}
