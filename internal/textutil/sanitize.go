package textutil

import "strings"

// fileNameReplacer maps filesystem-unsafe characters to a single safe
// substitute so rendered names stay one path segment wide on common
// filesystems.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "-",
	"\"", "-",
	"<", "-",
	">", "-",
	"|", "-",
)

// SanitizeFileName replaces filesystem-unsafe characters in a single path
// segment with "-" and trims trailing whitespace and periods, which Windows
// rejects in directory and file names.
func SanitizeFileName(name string) string {
	name = fileNameReplacer.Replace(name)
	return strings.TrimRight(name, " \t.")
}

// SanitizePath applies SanitizeFileName to every segment of a
// slash-separated relative path, preserving the separators themselves.
func SanitizePath(path string) string {
	segments := strings.Split(path, "/")
	for i, segment := range segments {
		segments[i] = SanitizeFileName(segment)
	}
	return strings.Join(segments, "/")
}
