// Package types defines every cross-package data structure used by the structmd CLI.
package types

const (
	// PathSeparator is the single separator used by every relative path and pattern.
	PathSeparator = "/"

	// MetadataDirectoryName is the version-control directory that is always excluded.
	MetadataDirectoryName = ".git"

	ConnectorStyleUniform = "uniform"
	ConnectorStyleClassic = "classic"

	// StandardOutputDestination selects standard output instead of a file.
	StandardOutputDestination = "-"
)

// IgnorePattern is one exclusion rule loaded from a pattern source.
type IgnorePattern struct {
	// Glob is the pattern text exactly as loaded, including any trailing separator.
	Glob string
	// IsDirectoryPattern reports whether the pattern text ended with a separator.
	IsDirectoryPattern bool
}

// Stem returns the pattern text without its trailing directory separator.
func (pattern IgnorePattern) Stem() string {
	if !pattern.IsDirectoryPattern {
		return pattern.Glob
	}
	stem := pattern.Glob
	for len(stem) > 0 && (stem[len(stem)-1] == '/' || stem[len(stem)-1] == '\\') {
		stem = stem[:len(stem)-1]
	}
	return stem
}

// PatternSet is the ordered, immutable list of patterns consulted for one run.
// The metadata directory pattern is always its last element.
type PatternSet struct {
	patterns []IgnorePattern
}

// NewPatternSet wraps patterns into a PatternSet. The slice is copied.
func NewPatternSet(patterns []IgnorePattern) PatternSet {
	copied := make([]IgnorePattern, len(patterns))
	copy(copied, patterns)
	return PatternSet{patterns: copied}
}

// Patterns returns a copy of the patterns in load order.
func (set PatternSet) Patterns() []IgnorePattern {
	copied := make([]IgnorePattern, len(set.patterns))
	copy(copied, set.patterns)
	return copied
}

// Len reports the number of patterns.
func (set PatternSet) Len() int {
	return len(set.patterns)
}

// PathEntry is one included path produced by a walk.
type PathEntry struct {
	// Path is relative to the traversal root, slash-separated, without a trailing separator.
	Path        string
	IsDirectory bool
}

// WalkSummary captures aggregate counts for a rendered tree.
type WalkSummary struct {
	Directories int
	Files       int
}
