package workspace

import (
	"path/filepath"
	"slices"
	"strings"
)

// Key identifies a workspace by its data directories, independent of order and spelling.
func Key(dirs []string) string {
	norm := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		norm = append(norm, filepath.Clean(d))
	}
	slices.Sort(norm)
	return strings.Join(slices.Compact(norm), string(filepath.ListSeparator))
}
