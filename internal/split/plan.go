package split

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"hermes/internal/cue"
	"hermes/internal/fileutil"
	"hermes/internal/nametemplate"
	"hermes/internal/presets"
	"hermes/internal/services"
)

// Overwrite selects what happens when an output file already exists.
type Overwrite int

const (
	// OverwritePrompt defers to the encoder's interactive prompt.
	OverwritePrompt Overwrite = iota
	// OverwriteForce replaces existing files without asking.
	OverwriteForce
	// OverwriteSkip leaves existing files untouched and marks the job
	// skipped.
	OverwriteSkip
)

// Encoder describes how the external encoder is invoked.
type Encoder struct {
	// FFmpeg is the encoder binary; defaults to "ffmpeg" on PATH.
	FFmpeg string
	// Preset names an entry of the preset table. Empty selects stream
	// copy for recognized source types, the flac preset otherwise.
	Preset string
	// RawArgs are verbatim encoder arguments supplied after the "--"
	// separator; they replace any preset and require RawExt.
	RawArgs []string
	// RawExt is the output extension for raw-argument runs, since it
	// cannot be inferred from a preset.
	RawExt string
	// NoCopy disables the stream-copy shortcut.
	NoCopy bool
}

// Options configures planning and execution for one cuesheet.
type Options struct {
	Template   *nametemplate.Template
	OutDir     string
	Encoder    Encoder
	Overwrite  Overwrite
	Workers    int
	JobTimeout time.Duration
}

// Tag is one metadata key/value pair passed to the encoder.
type Tag struct {
	Key   string
	Value string
}

// OutputSpec is the rendered destination for one track: a filesystem path
// plus the tags to embed.
type OutputSpec struct {
	Path string
	Tags []Tag
}

// EncodeJob is one track's fully-resolved encode request. The orchestrator
// exclusively owns each job and drives it to a terminal outcome.
type EncodeJob struct {
	TrackNumber int
	TrackTitle  string
	Source      string
	Start       cue.TimeCode
	Duration    cue.TimeCode
	HasDuration bool
	Spec        OutputSpec
	SkipExists  bool
	// Args is the complete encoder argument list, output path included.
	Args []string
}

// Plan turns a parsed cuesheet into one EncodeJob per track, in track
// order. It validates the template, checks that every source image exists,
// renders and deduplicates output paths, and freezes each job's encoder
// argument list. Nothing is written to the filesystem.
func Plan(sheet *cue.CueSheet, cueDir string, opts Options) ([]EncodeJob, error) {
	if opts.Template == nil {
		return nil, services.Wrap(services.ErrTemplate, "split", "plan", "no naming template configured", nil)
	}
	if err := opts.Template.Validate(); err != nil {
		return nil, err
	}
	if sheet.TrackCount() == 0 {
		return nil, services.Wrap(services.ErrParse, "split", "plan", "cuesheet has no tracks", nil)
	}
	if len(opts.Encoder.RawArgs) > 0 {
		if err := validateExt(opts.Encoder.RawExt); err != nil {
			return nil, err
		}
	}

	year := yearFromDate(sheet.Date)
	dirName := dirNameOf(cueDir)
	width := nametemplate.NumberWidth(sheet.MaxTrackNumber())
	albumTags := albumTags(sheet)

	jobs := make([]EncodeJob, 0, sheet.TrackCount())
	rendered := map[string]int{}

	for si := range sheet.Files {
		section := &sheet.Files[si]
		source := filepath.Join(cueDir, filepath.FromSlash(section.Name))
		if !fileutil.FileExists(source) {
			return nil, services.Wrap(services.ErrConfiguration, "split", "plan",
				fmt.Sprintf("file named in cuesheet does not exist: %s", source), nil)
		}

		ext, codecArgs, err := resolveEncoding(source, opts.Encoder)
		if err != nil {
			return nil, err
		}

		album := firstNonEmpty(section.Title, sheet.Title)

		for _, track := range section.Tracks {
			values := nametemplate.Values{
				Artist:      pathFallback(track.Performer, "(unknown)"),
				Album:       pathFallback(album, "(unknown)"),
				Title:       pathFallback(track.Title, "(untitled)"),
				Year:        year,
				Genre:       sheet.Genre,
				DirName:     dirName,
				Ext:         ext,
				Number:      track.Number,
				NumberWidth: width,
			}
			relative := opts.Template.Render(values)
			output := filepath.Join(opts.OutDir, filepath.FromSlash(relative))

			if prev, dup := rendered[output]; dup {
				return nil, services.Wrap(services.ErrConfiguration, "split", "plan",
					fmt.Sprintf("tracks %d and %d render the same output path %s (choose a more specific naming template)",
						prev, track.Number, output), nil)
			}
			rendered[output] = track.Number

			spec := OutputSpec{
				Path: output,
				Tags: trackTags(albumTags, album, track),
			}
			job := EncodeJob{
				TrackNumber: track.Number,
				TrackTitle:  track.Title,
				Source:      source,
				Start:       track.Start,
				Spec:        spec,
				SkipExists:  opts.Overwrite == OverwriteSkip,
			}
			if duration, ok := track.Duration(); ok {
				job.Duration = duration
				job.HasDuration = true
			}
			job.Args = buildArgs(job, codecArgs, opts)
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// resolveEncoding picks the output extension and codec arguments for one
// source file: raw passthrough args win, then the named preset (collapsing
// to stream copy when the source container already matches), then the
// copy-or-flac default.
func resolveEncoding(source string, enc Encoder) (string, []string, error) {
	if len(enc.RawArgs) > 0 {
		return enc.RawExt, enc.RawArgs, nil
	}
	if name := strings.TrimSpace(enc.Preset); name != "" {
		p, err := presets.Lookup(name)
		if err != nil {
			return "", nil, err
		}
		if !enc.NoCopy && strings.EqualFold(strings.TrimPrefix(filepath.Ext(source), "."), p.Ext) {
			return p.Ext, presets.CopyArgs(), nil
		}
		return p.Ext, p.Args, nil
	}
	if !enc.NoCopy {
		if ext, ok := presets.CopyCodecExt(source); ok {
			return ext, presets.CopyArgs(), nil
		}
	}
	p, err := presets.Lookup(presets.DefaultName)
	if err != nil {
		return "", nil, err
	}
	return p.Ext, p.Args, nil
}

// buildArgs freezes the full encoder argument list for one job. The seek
// option follows the input so ffmpeg seeks on the decode side, keeping
// track boundaries frame-accurate across hundreds of tracks from the same
// image.
func buildArgs(job EncodeJob, codecArgs []string, opts Options) []string {
	args := make([]string, 0, 16+2*len(job.Spec.Tags)+len(codecArgs))
	switch opts.Overwrite {
	case OverwriteForce:
		args = append(args, "-y")
	case OverwriteSkip:
		args = append(args, "-n")
	}
	args = append(args, "-hide_banner", "-loglevel", "error")
	args = append(args, "-i", job.Source)
	args = append(args, "-ss", job.Start.Seconds())
	if job.HasDuration {
		args = append(args, "-t", job.Duration.Seconds())
	}
	for _, tag := range job.Spec.Tags {
		args = append(args, "-metadata", tag.Key+"="+tag.Value)
	}
	args = append(args, codecArgs...)
	args = append(args, job.Spec.Path)
	return args
}

// albumTags collects the sheet-level tags shared by every track. REM
// entries pass through sorted by key so argument lists are deterministic.
func albumTags(sheet *cue.CueSheet) []Tag {
	tags := remTags(sheet.Rems)
	if sheet.Performer != "" {
		tags = append(tags, Tag{"ARTIST", sheet.Performer}, Tag{"PERFORMER", sheet.Performer})
	}
	if sheet.Title != "" {
		tags = append(tags, Tag{"ALBUM", sheet.Title})
	}
	if sheet.Songwriter != "" {
		tags = append(tags, Tag{"SONGWRITER", sheet.Songwriter})
	}
	if sheet.Date != "" {
		tags = append(tags, Tag{"DATE", sheet.Date})
	}
	if sheet.Genre != "" {
		tags = append(tags, Tag{"GENRE", sheet.Genre})
	}
	if sheet.Catalog != "" {
		tags = append(tags, Tag{"CATALOG", sheet.Catalog})
	}
	return tags
}

// trackTags appends track-level tags after the album tags; the encoder
// applies later duplicates over earlier ones, so track values win.
func trackTags(album []Tag, albumTitle string, track cue.Track) []Tag {
	tags := make([]Tag, 0, len(album)+8)
	tags = append(tags, album...)
	if albumTitle != "" {
		tags = append(tags, Tag{"ALBUM", albumTitle})
	}
	for _, tag := range remTags(track.Rems) {
		if tag.Value != "" {
			tags = append(tags, tag)
		}
	}
	if track.Title != "" {
		tags = append(tags, Tag{"TITLE", track.Title})
	}
	if track.Performer != "" {
		tags = append(tags, Tag{"ARTIST", track.Performer}, Tag{"PERFORMER", track.Performer})
	}
	if track.Songwriter != "" {
		tags = append(tags, Tag{"SONGWRITER", track.Songwriter})
	}
	if track.ISRC != "" {
		tags = append(tags, Tag{"ISRC", track.ISRC})
	}
	tags = append(tags, Tag{"TRACKNUMBER", strconv.Itoa(track.Number)})
	return tags
}

func remTags(rems map[string]string) []Tag {
	if len(rems) == 0 {
		return nil
	}
	keys := make([]string, 0, len(rems))
	for k := range rems {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	tags := make([]Tag, 0, len(keys))
	for _, k := range keys {
		tags = append(tags, Tag{k, rems[k]})
	}
	return tags
}

// yearFromDate extracts a plausible year from a cuesheet DATE value such
// as "2003", "2003-05-01", or "01.05.2003": the longest numeric run wins.
func yearFromDate(date string) string {
	best := ""
	for _, part := range strings.FieldsFunc(date, func(r rune) bool {
		return r == '-' || r == '.' || r == '/' || r == '\\' || r == ' '
	}) {
		if _, err := strconv.Atoi(part); err != nil {
			continue
		}
		if len(part) > len(best) {
			best = part
		}
	}
	return best
}

func dirNameOf(dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return filepath.Base(dir)
	}
	return filepath.Base(abs)
}

func validateExt(ext string) error {
	if ext == "" {
		return services.Wrap(services.ErrConfiguration, "split", "plan",
			"raw encoder arguments require --ext, the output extension cannot be inferred", nil)
	}
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return services.Wrap(services.ErrConfiguration, "split", "plan",
				fmt.Sprintf("extension %q must be alphanumeric", ext), nil)
		}
	}
	return nil
}

func pathFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
