package fs

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFile is the per-directory file of extra ignore patterns read by import.
const IgnoreFile = ".flipignore"

// defaultIgnorePatterns always apply, whatever the config says.
var defaultIgnorePatterns = []string{IgnoreFile}

type ignorePattern struct {
	pattern   string
	matchPath bool // match the relative path instead of the basename
	negate    bool // "!pattern" re-includes what earlier patterns ignored
}

// IgnoreMatcher decides which files an import skips.
//
// Patterns without '/' match the basename; patterns with '/' match the path
// relative to the import root. A leading '!' re-includes a match. The last
// matching pattern wins.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher builds a matcher from raw pattern lines plus the defaults.
// Blank lines and '#' comments are skipped.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	m := &IgnoreMatcher{}
	for _, raw := range append(append([]string{}, defaultIgnorePatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if rest, ok := strings.CutPrefix(raw, "!"); ok {
			p.negate = true
			raw = rest
		}
		p.pattern = strings.TrimSuffix(raw, "/")
		p.matchPath = strings.Contains(p.pattern, "/")
		if p.pattern == "" {
			continue
		}
		m.patterns = append(m.patterns, p)
	}
	return m
}

// Match reports whether relativePath should be skipped.
func (m *IgnoreMatcher) Match(relativePath string) bool {
	if m == nil || relativePath == "" {
		return false
	}

	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	ignored := false
	for _, p := range m.patterns {
		target := basename
		if p.matchPath {
			target = normalized
		}
		matched, err := filepath.Match(p.pattern, target)
		if err != nil {
			// Malformed pattern.
			continue
		}
		if matched {
			ignored = !p.negate
		}
	}
	return ignored
}

// ParseIgnoreFile reads raw pattern lines from path. A missing file yields
// no patterns and no error.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		patterns = append(patterns, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return patterns, nil
}
