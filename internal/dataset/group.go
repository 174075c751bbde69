package dataset

import (
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/desertthunder/tslabel/internal/models"
)

// DefaultMatchLength is the number of name characters forming a group key.
const DefaultMatchLength = 20

var (
	leadingDate  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	leadingWords = regexp.MustCompile(`^[a-zA-Z_]+`)
)

// GroupFiles buckets files whose base names share the same key.
//
// The key is the first (prefix mode) or last (suffix mode) length characters of the name with its
// extension removed, or the whole name when it is shorter. Groups are ordered by key and files
// within a group by modification time, oldest first.
func GroupFiles(files []string, mode models.MatchMode, length int) []models.Group {
	if length <= 0 {
		length = DefaultMatchLength
	}

	byKey := make(map[string][]string)
	for _, f := range files {
		key := groupKey(BaseName(f), mode, length)
		byKey[key] = append(byKey[key], f)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	groups := make([]models.Group, 0, len(keys))
	for _, k := range keys {
		members := byKey[k]
		sortByModTime(members)
		groups = append(groups, models.Group{Key: k, Files: members})
	}
	return groups
}

func groupKey(name string, mode models.MatchMode, length int) string {
	runes := []rune(name)
	if len(runes) <= length {
		return name
	}
	if mode == models.MatchSuffix {
		return string(runes[len(runes)-length:])
	}
	return string(runes[:length])
}

func sortByModTime(files []string) {
	mtimes := make(map[string]time.Time, len(files))
	for _, f := range files {
		if info, err := os.Stat(f); err == nil {
			mtimes[f] = info.ModTime()
		}
	}
	slices.SortStableFunc(files, func(a, b string) int {
		if c := mtimes[a].Compare(mtimes[b]); c != 0 {
			return c
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	})
}

// Validate keeps the paths that exist, are regular files and are not empty.
func Validate(paths []string) []string {
	valid := make([]string, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
			continue
		}
		valid = append(valid, p)
	}
	return valid
}

// CommonPrefix derives a display name for a set of files.
//
// A single file is named after itself. Otherwise the longest shared leading substring of the base
// names is used; when that is shorter than three characters the first name's leading date
// (YYYY-MM-DD), then its leading letters, then its first ten characters are tried in turn.
func CommonPrefix(paths []string) string {
	if len(paths) == 0 {
		return "data"
	}

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = BaseName(p)
	}
	if len(names) == 1 {
		return names[0]
	}

	prefix := []rune(names[0])
	for _, n := range names[1:] {
		r := []rune(n)
		i := 0
		for i < len(prefix) && i < len(r) && prefix[i] == r[i] {
			i++
		}
		prefix = prefix[:i]
	}
	if len(prefix) >= 3 {
		return string(prefix)
	}

	first := names[0]
	if m := leadingDate.FindString(first); m != "" {
		return m
	}
	if m := leadingWords.FindString(first); m != "" {
		return m
	}
	if r := []rune(first); len(r) > 10 {
		return string(r[:10])
	}
	if first == "" {
		return "data"
	}
	return first
}

// GroupName returns the display name of a group: the common prefix of its files, or the key.
func GroupName(g models.Group) string {
	if len(g.Files) == 0 {
		return g.Key
	}
	return CommonPrefix(g.Files)
}
