package checker

import (
	"fmt"
	"os"
	"path/filepath"
)

// Targets expands path into the candidate list for a check.
// A directory yields every entry directly inside it, sorted
// by name and joined with path; anything else, including a
// path that does not exist, is returned as the only
// candidate.
func Targets(path string) ([]string, error) {
	const errCtx = "listing targets"

	fi, err := os.Stat(path)
	if err != nil || !fi.IsDir() {
		return []string{path}, nil //nolint:nilerr // checker skips it
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	targets := make([]string, 0, len(entries))
	for _, en := range entries {
		targets = append(targets, filepath.Join(path, en.Name()))
	}

	return targets, nil
}
