package cue

// CueSheet is the parsed document: album-level metadata plus the ordered
// file sections that own the tracks. Instances are built by Parse and are
// read-only afterwards, except for ResolveLastEnd on a section.
type CueSheet struct {
	Title      string
	Performer  string
	Songwriter string
	Genre      string
	Date       string
	Catalog    string
	Rems       map[string]string

	Files []FileSection
}

// FileSection names one source image file and owns the tracks carved from
// it, ordered by start position.
type FileSection struct {
	// Name is the source file exactly as written in the FILE command,
	// resolved against the cuesheet directory by the caller.
	Name string
	// Title, Performer, and Songwriter are file-level overrides that
	// tracks inherit.
	Title      string
	Performer  string
	Songwriter string

	Tracks []Track
}

// Track is one output unit. Performer and songwriter inheritance is
// resolved at parse time, so consumers never walk back to sheet fields.
type Track struct {
	Number     int
	Title      string
	Performer  string
	Songwriter string
	ISRC       string
	Rems       map[string]string

	// Start is the INDEX 01 position. Pregap is the INDEX 00 position when
	// one was declared; it never produces an output segment of its own.
	Start     TimeCode
	Pregap    TimeCode
	HasPregap bool

	// End is the resolved end position. For the last track of a section it
	// stays unset until ResolveLastEnd supplies the audio length, in which
	// case the encoder runs to end of file instead.
	End    TimeCode
	EndSet bool
}

// Duration returns the exact track length when the end is resolved.
func (t Track) Duration() (TimeCode, bool) {
	if !t.EndSet {
		return 0, false
	}
	return t.End.Sub(t.Start), true
}

// ResolveLastEnd supplies the physical length of the section's audio file,
// closing the open range of the final track. The parser cannot read audio
// headers, so this is the caller's responsibility. Lengths shorter than the
// last start position are ignored.
func (f *FileSection) ResolveLastEnd(total TimeCode) {
	if len(f.Tracks) == 0 {
		return
	}
	last := &f.Tracks[len(f.Tracks)-1]
	if last.EndSet || total < last.Start {
		return
	}
	last.End = total
	last.EndSet = true
}

// MaxTrackNumber returns the highest track number in the sheet; it decides
// the zero-padding width for the <no> template placeholder.
func (s *CueSheet) MaxTrackNumber() int {
	max := 0
	for _, f := range s.Files {
		for _, t := range f.Tracks {
			if t.Number > max {
				max = t.Number
			}
		}
	}
	return max
}

// TrackCount returns the total number of tracks across all sections.
func (s *CueSheet) TrackCount() int {
	n := 0
	for _, f := range s.Files {
		n += len(f.Tracks)
	}
	return n
}

// resolveEnds derives each track's end from the start of the next track in
// the same section, producing the final immutable sequence. The last track
// of every section keeps an open end.
func (s *CueSheet) resolveEnds() {
	for fi := range s.Files {
		tracks := s.Files[fi].Tracks
		for i := 0; i+1 < len(tracks); i++ {
			tracks[i].End = tracks[i+1].Start
			tracks[i].EndSet = true
		}
	}
}
