package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"hermes/internal/services"
)

// Cuesheets resolves a user-supplied path to the list of cuesheet files to
// process. A file path is returned as-is; a directory is walked
// recursively for *.cue entries (case-insensitive), hidden directories
// included. Finding nothing is an error.
func Cuesheets(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "discover", "stat",
			fmt.Sprintf("file or directory does not exist: %s", path), err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var found []string
	err = filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(entry), ".cue") {
			found = append(found, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", path, err)
	}
	if len(found) == 0 {
		return nil, services.Wrap(services.ErrConfiguration, "discover", "walk",
			fmt.Sprintf("no .cue files found under %s", path), nil)
	}
	sort.Strings(found)
	return found, nil
}
