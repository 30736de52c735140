package presets

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"hermes/internal/services"
)

// Preset is one named encoder configuration.
type Preset struct {
	Name string
	// Ext is the output extension without the leading dot.
	Ext string
	// Args are the ffmpeg codec/container arguments.
	Args []string
}

// DefaultName is the preset used when nothing else applies.
const DefaultName = "flac"

// table is built once and never mutated; Lookup and All hand out copies.
var table = map[string]Preset{}

func init() {
	register := func(name, ext string, args ...string) {
		table[name] = Preset{Name: name, Ext: ext, Args: args}
	}

	register("wav", "wav", "-f", "wav")
	register("flac", "flac", "-f", "flac", "-c:a", "flac", "-compression_level", "8")
	register("flac-comp10", "flac", "-f", "flac", "-c:a", "flac", "-compression_level", "10")

	register("libopus-low", "ogg", "-f", "oga", "-c:a", "libopus", "-b:a", "48k")
	register("libopus", "ogg", "-f", "oga", "-c:a", "libopus", "-b:a", "128k")
	register("libopus-high", "ogg", "-f", "oga", "-c:a", "libopus", "-b:a", "192k")
	register("libopus-ultra", "ogg", "-f", "oga", "-c:a", "libopus", "-b:a", "256k")

	register("libmp3lame-low", "mp3", "-f", "mp3", "-c:a", "libmp3lame", "-b:a", "64k")
	register("libmp3lame", "mp3", "-f", "mp3", "-c:a", "libmp3lame", "-b:a", "128k")
	register("libmp3lame-high", "mp3", "-f", "mp3", "-c:a", "libmp3lame", "-b:a", "224k")
	register("libmp3lame-ultra", "mp3", "-f", "mp3", "-c:a", "libmp3lame", "-b:a", "320k")

	register("libfdk-aac-low", "m4a", "-f", "mp4", "-c:a", "libfdk_aac", "-b:a", "64k")
	register("libfdk-aac", "m4a", "-f", "mp4", "-c:a", "libfdk_aac", "-b:a", "128k")
	register("libfdk-aac-high", "m4a", "-f", "mp4", "-c:a", "libfdk_aac", "-b:a", "192k")
	register("libfdk-aac-ultra", "m4a", "-f", "mp4", "-c:a", "libfdk_aac", "-b:a", "256k", "-cutoff", "18000")

	register("libvorbis-low", "ogg", "-f", "oga", "-c:a", "libvorbis", "-q", "2.0")
	register("libvorbis", "ogg", "-f", "oga", "-c:a", "libvorbis", "-q", "5.0")
	register("libvorbis-high", "ogg", "-f", "oga", "-c:a", "libvorbis", "-q", "6.5")
	register("libvorbis-ultra", "ogg", "-f", "oga", "-c:a", "libvorbis", "-q", "8.0")
}

// Lookup resolves a preset by name, case-insensitively.
func Lookup(name string) (Preset, error) {
	p, ok := table[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Preset{}, services.Wrap(services.ErrConfiguration, "presets", "lookup",
			fmt.Sprintf("unknown preset %q (run 'hermes presets' for the full list)", name), nil)
	}
	return clone(p), nil
}

// All returns every preset sorted by name.
func All() []Preset {
	out := make([]Preset, 0, len(table))
	for _, p := range table {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CopyArgs is the argument set that remuxes without re-encoding.
func CopyArgs() []string { return []string{"-c", "copy"} }

// copyExts lists source extensions whose streams can be copied verbatim
// into a container of the same type.
var copyExts = []string{"wav", "flac", "mp3", "aac", "m4a", "opus", "ogg"}

// CopyCodecExt returns the lowercase extension of path when its codec can
// be stream-copied instead of re-encoded.
func CopyCodecExt(path string) (string, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, known := range copyExts {
		if strings.EqualFold(ext, known) {
			return known, true
		}
	}
	return "", false
}

func clone(p Preset) Preset {
	args := make([]string, len(p.Args))
	copy(args, p.Args)
	p.Args = args
	return p
}
