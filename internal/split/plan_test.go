package split

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"hermes/internal/cue"
	"hermes/internal/nametemplate"
	"hermes/internal/services"
)

const twoTrackSheet = `PERFORMER "The Gloaming"
TITLE "Long Shadows"
REM DATE 2003
FILE "image.flac" WAVE
  TRACK 01 AUDIO
    TITLE "Nightfall"
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    TITLE "Ashes"
    INDEX 01 03:30:00
`

func planFixture(t *testing.T, sheetText, sourceName string) (*cue.CueSheet, string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, sourceName), []byte("audio"), 0o644); err != nil {
		t.Fatal(err)
	}
	sheet, err := cue.Parse(sheetText)
	if err != nil {
		t.Fatalf("parse fixture sheet: %v", err)
	}
	return sheet, dir
}

func defaultOptions(dir string) Options {
	return Options{
		Template: nametemplate.Parse("<no>. <title>.<ext>"),
		OutDir:   filepath.Join(dir, "split"),
	}
}

func TestPlanSpecExampleRanges(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	total, _ := cue.ParseTimeCode("05:00:00")
	sheet.Files[0].ResolveLastEnd(total)

	jobs, err := Plan(sheet, dir, defaultOptions(dir))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}

	// Track 1 covers [0s, 210s), track 2 covers [210s, 300s).
	first := strings.Join(jobs[0].Args, " ")
	if !strings.Contains(first, "-ss 0 -t 210 ") {
		t.Errorf("track 1 args missing -ss 0 -t 210: %q", first)
	}
	second := strings.Join(jobs[1].Args, " ")
	if !strings.Contains(second, "-ss 210") || !strings.Contains(second, "-t 90") {
		t.Errorf("track 2 args missing -ss 210 -t 90: %q", second)
	}

	if jobs[0].Spec.Path != filepath.Join(dir, "split", "01. Nightfall.flac") {
		t.Errorf("track 1 output = %q", jobs[0].Spec.Path)
	}
}

func TestPlanLastTrackWithoutResolvedEndRunsToEOF(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")

	jobs, err := Plan(sheet, dir, defaultOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	last := jobs[len(jobs)-1]
	if last.HasDuration {
		t.Fatal("last track should have no duration when the end is unresolved")
	}
	if strings.Contains(strings.Join(last.Args, " "), "-t ") {
		t.Fatalf("last track args must omit -t: %v", last.Args)
	}
}

func TestPlanSeekFollowsInput(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	jobs, err := Plan(sheet, dir, defaultOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	args := jobs[1].Args
	var inputAt, seekAt int
	for i, a := range args {
		switch a {
		case "-i":
			inputAt = i
		case "-ss":
			seekAt = i
		}
	}
	if seekAt < inputAt {
		t.Fatalf("-ss must follow -i for decode-side seeking: %v", args)
	}
}

func TestPlanStreamCopyWhenContainerMatchesPreset(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	opts := defaultOptions(dir)
	opts.Encoder.Preset = "flac"

	jobs, err := Plan(sheet, dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(jobs[0].Args, " ")
	if !strings.Contains(joined, "-c copy") {
		t.Fatalf("expected stream copy for matching container: %q", joined)
	}

	opts.Encoder.NoCopy = true
	jobs, err = Plan(sheet, dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	joined = strings.Join(jobs[0].Args, " ")
	if strings.Contains(joined, "-c copy") || !strings.Contains(joined, "-compression_level 8") {
		t.Fatalf("NoCopy should force re-encoding: %q", joined)
	}
}

func TestPlanDefaultsToFlacForUnknownContainer(t *testing.T) {
	text := strings.ReplaceAll(twoTrackSheet, "image.flac", "image.ape")
	sheet, dir := planFixture(t, text, "image.ape")

	jobs, err := Plan(sheet, dir, defaultOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(jobs[0].Args, " ")
	if !strings.Contains(joined, "-c:a flac") {
		t.Fatalf("expected flac fallback: %q", joined)
	}
	if !strings.HasSuffix(jobs[0].Spec.Path, ".flac") {
		t.Fatalf("expected .flac extension: %q", jobs[0].Spec.Path)
	}
}

func TestPlanRawArgsRequireExt(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	opts := defaultOptions(dir)
	opts.Encoder.RawArgs = []string{"-c:a", "libopus", "-b:a", "96k"}

	_, err := Plan(sheet, dir, opts)
	if err == nil {
		t.Fatal("expected error for raw args without --ext")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}

	opts.Encoder.RawExt = "opus"
	jobs, err := Plan(sheet, dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(jobs[0].Args, " ")
	if !strings.Contains(joined, "-c:a libopus -b:a 96k") {
		t.Fatalf("raw args not passed through: %q", joined)
	}
	if !strings.HasSuffix(jobs[0].Spec.Path, ".opus") {
		t.Fatalf("raw ext not applied: %q", jobs[0].Spec.Path)
	}
}

func TestPlanRejectsNonAlphanumericExt(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	opts := defaultOptions(dir)
	opts.Encoder.RawArgs = []string{"-c:a", "copy"}
	opts.Encoder.RawExt = "fl ac"

	if _, err := Plan(sheet, dir, opts); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPlanDuplicateOutputPaths(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	opts := defaultOptions(dir)
	opts.Template = nametemplate.Parse("<album>.<ext>")

	_, err := Plan(sheet, dir, opts)
	if err == nil {
		t.Fatal("expected duplicate output path error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "naming template") {
		t.Fatalf("error should hint at the template: %v", err)
	}
}

func TestPlanMissingSourceImage(t *testing.T) {
	dir := t.TempDir()
	sheet, err := cue.Parse(twoTrackSheet)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Plan(sheet, dir, defaultOptions(dir))
	if err == nil {
		t.Fatal("expected error for missing source image")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestPlanUnknownTemplatePlaceholderFailsBeforeJobs(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	opts := defaultOptions(dir)
	opts.Template = nametemplate.Parse("<bogus>.<ext>")

	_, err := Plan(sheet, dir, opts)
	if !errors.Is(err, services.ErrTemplate) {
		t.Fatalf("expected template error, got %v", err)
	}
}

func TestPlanMetadataTags(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")
	jobs, err := Plan(sheet, dir, defaultOptions(dir))
	if err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(jobs[0].Args, " ")
	for _, want := range []string{
		"-metadata ALBUM=Long Shadows",
		"-metadata ARTIST=The Gloaming",
		"-metadata TITLE=Nightfall",
		"-metadata TRACKNUMBER=1",
		"-metadata DATE=2003",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q: %q", want, joined)
		}
	}
}

func TestPlanOverwriteFlags(t *testing.T) {
	sheet, dir := planFixture(t, twoTrackSheet, "image.flac")

	opts := defaultOptions(dir)
	opts.Overwrite = OverwriteForce
	jobs, err := Plan(sheet, dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if jobs[0].Args[0] != "-y" {
		t.Fatalf("force overwrite should lead with -y: %v", jobs[0].Args)
	}

	opts.Overwrite = OverwriteSkip
	jobs, err = Plan(sheet, dir, opts)
	if err != nil {
		t.Fatal(err)
	}
	if jobs[0].Args[0] != "-n" || !jobs[0].SkipExists {
		t.Fatalf("skip policy not reflected in job: %v", jobs[0])
	}
}

func TestYearFromDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2003", "2003"},
		{"2003-05-01", "2003"},
		{"01.05.2003", "2003"},
		{"05/2003", "2003"},
		{"unknown", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := yearFromDate(tt.date); got != tt.want {
			t.Fatalf("yearFromDate(%q) = %q, want %q", tt.date, got, tt.want)
		}
	}
}
