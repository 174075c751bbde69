package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultExtensions are the file name suffixes picked up by [Scan] when none are given.
var DefaultExtensions = []string{".npy", ".npy.gz", ".npy.xz"}

// compressionSuffixes are stripped before the array extension when deriving a display name.
var compressionSuffixes = []string{".gz", ".bz2", ".xz"}

// Scan recursively collects data files under every directory in dirs.
//
// Matching is case-insensitive on the configured extensions. Directories that do not exist are
// skipped; any other I/O failure is returned. The result is sorted and free of duplicates.
func Scan(dirs []string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	var files []string
	for _, dir := range dirs {
		info, err := os.Stat(dir)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
		}
		if !info.IsDir() {
			if hasExtension(dir, extensions) {
				files = append(files, filepath.Clean(dir))
			}
			continue
		}

		matches, err := doublestar.FilepathGlob(filepath.Join(dir, "**", "*"), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern matching failed in %s: %w", dir, err)
		}
		for _, m := range matches {
			if hasExtension(m, extensions) {
				files = append(files, m)
			}
		}
	}

	slices.Sort(files)
	return slices.Compact(files), nil
}

func hasExtension(path string, extensions []string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, ext := range extensions {
		if ext != "" && strings.HasSuffix(name, strings.ToLower(ext)) {
			return true
		}
	}
	return false
}

// BaseName returns the file name of path without directory, compression suffix, or extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	lower := strings.ToLower(name)
	for _, suffix := range compressionSuffixes {
		if strings.HasSuffix(lower, suffix) {
			name = name[:len(name)-len(suffix)]
			break
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
