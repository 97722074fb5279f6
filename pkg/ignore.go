package dirauditor

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// ExcludeFilter holds regular expressions for paths left out of a scan.
// Patterns are matched against the slash-separated path relative to the
// audited root. An empty filter excludes nothing.
type ExcludeFilter struct {
	patterns []*regexp.Regexp
}

// NewExcludeFilter compiles patterns, skipping blank entries
func NewExcludeFilter(patterns []string) (*ExcludeFilter, error) {
	ef := &ExcludeFilter{
		patterns: make([]*regexp.Regexp, 0, len(patterns)),
	}
	for _, patternStr := range patterns {
		if err := ef.AddPattern(patternStr); err != nil {
			return nil, err
		}
	}
	return ef, nil
}

// AddPattern compiles and adds one pattern. Blank patterns are ignored.
func (ef *ExcludeFilter) AddPattern(patternStr string) error {
	patternStr = strings.TrimSpace(patternStr)
	if patternStr == "" {
		return nil
	}

	pattern, err := regexp.Compile(patternStr)
	if err != nil {
		return fmt.Errorf("invalid exclude pattern %q: %w", patternStr, err)
	}

	ef.patterns = append(ef.patterns, pattern)
	return nil
}

// ShouldExclude reports whether relativePath matches any pattern
func (ef *ExcludeFilter) ShouldExclude(relativePath string) bool {
	if ef == nil {
		return false
	}

	normalisedPath := filepath.ToSlash(relativePath)
	for _, pattern := range ef.patterns {
		if pattern.MatchString(normalisedPath) {
			return true
		}
	}
	return false
}

// HasPatterns returns true if there are any patterns
func (ef *ExcludeFilter) HasPatterns() bool {
	return ef != nil && len(ef.patterns) > 0
}

// Patterns returns the pattern sources in the order they were added
func (ef *ExcludeFilter) Patterns() []string {
	if ef == nil {
		return nil
	}
	sources := make([]string, 0, len(ef.patterns))
	for _, pattern := range ef.patterns {
		sources = append(sources, pattern.String())
	}
	return sources
}

// ValidatePattern checks if a pattern string is a valid regex
func ValidatePattern(patternStr string) error {
	_, err := regexp.Compile(patternStr)
	return err
}
