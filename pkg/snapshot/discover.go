package snapshot

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/maruel/natural"
)

// Default discovery patterns.
var (
	DefaultInclude = []string{"**/*.json"}
	DefaultExclude = []string{"**/node_modules/**", "**/.git/**", ".stylelens/**"}
)

// Matcher applies include/exclude globs to slash-separated paths relative
// to a root.
type Matcher struct {
	Include []string
	Exclude []string
}

// NewMatcher validates the patterns. Empty include means DefaultInclude and
// a nil exclude means DefaultExclude; pass an empty non-nil slice to exclude
// nothing.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	if len(include) == 0 {
		include = DefaultInclude
	}
	if exclude == nil {
		exclude = DefaultExclude
	}
	for _, pattern := range exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return &Matcher{Include: include, Exclude: exclude}, nil
}

// Excluded reports whether rel matches an exclude pattern.
func (m *Matcher) Excluded(rel string) bool {
	for _, pattern := range m.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Matches reports whether a file at rel is a snapshot candidate.
func (m *Matcher) Matches(rel string) bool {
	if m.Excluded(rel) {
		return false
	}
	for _, pattern := range m.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Discover walks root and returns the absolute paths of matching snapshot
// files in natural order, so page-2.json sorts before page-10.json.
func Discover(root string, m *Matcher) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && (m.Excluded(rel) || m.Excluded(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if m.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Sort(natural.StringSlice(files))
	return files, nil
}
