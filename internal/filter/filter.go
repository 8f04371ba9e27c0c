// Package filter decides whether a path relative to the traversal root is excluded
// by a pattern set.
//
// Only two characters are special in a pattern: `*` matches any run of characters
// inside one path segment and `?` matches exactly one character inside a segment.
// Neither crosses a `/`. A run of stars is treated as a single star. Every other
// character, including `[`, `]`, `{`, `}` and `!`, is matched literally. Backslashes
// in paths and patterns are read as separators and a leading `/` on a pattern is
// dropped.
//
// Patterns are matched against the whole relative path. A directory pattern excludes
// the path equal to its stem and everything below it. The metadata directory pattern
// is the exception: it matches a segment of that name at any depth. A path is
// excluded when it, or any of its ancestor directories, is excluded.
package filter

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

const (
	globSeparator         = '/'
	starCharacter         = '*'
	questionMarkCharacter = '?'

	errorCompilePatternFormat = "compile ignore pattern %q: %w"
)

type compiledPattern struct {
	source  types.IgnorePattern
	matcher glob.Glob
	// anySegment matches the last segment instead of the whole path.
	anySegment bool
}

// PathFilter evaluates relative paths against a compiled pattern set.
// It holds no mutable state and is safe for concurrent use.
type PathFilter struct {
	patterns []compiledPattern
}

// New compiles every pattern of patternSet. Patterns whose stem is empty are skipped.
func New(patternSet types.PatternSet) (*PathFilter, error) {
	var compiled []compiledPattern
	for _, pattern := range patternSet.Patterns() {
		stem := strings.TrimPrefix(utils.NormalizeSeparators(pattern.Stem()), types.PathSeparator)
		if stem == "" {
			continue
		}
		matcher, compileError := compileSegmentGlob(stem)
		if compileError != nil {
			return nil, fmt.Errorf(errorCompilePatternFormat, pattern.Glob, compileError)
		}
		compiled = append(compiled, compiledPattern{
			source:     pattern,
			matcher:    matcher,
			anySegment: stem == types.MetadataDirectoryName,
		})
	}
	return &PathFilter{patterns: compiled}, nil
}

// Excluded reports whether relativePath is excluded. A trailing separator, used for
// directories, does not change the result. The root, expressed as the empty string,
// is never excluded.
func (filter *PathFilter) Excluded(relativePath string) bool {
	_, excluded := filter.MatchingPattern(relativePath)
	return excluded
}

// MatchingPattern returns the first pattern that excludes relativePath.
func (filter *PathFilter) MatchingPattern(relativePath string) (types.IgnorePattern, bool) {
	segments := utils.SplitRelativePath(relativePath)
	for depth := 1; depth <= len(segments); depth++ {
		if pattern, matched := filter.matchEntry(segments[:depth]); matched {
			return pattern, true
		}
	}
	return types.IgnorePattern{}, false
}

// matchEntry evaluates the entry named by segments on its own, ignoring its ancestors.
// An ancestor prefix matching a directory pattern's stem is the `<stem>/<anything>` case.
func (filter *PathFilter) matchEntry(segments []string) (types.IgnorePattern, bool) {
	fullPath := strings.Join(segments, types.PathSeparator)
	lastSegment := segments[len(segments)-1]
	for _, pattern := range filter.patterns {
		subject := fullPath
		if pattern.anySegment {
			subject = lastSegment
		}
		if pattern.matcher.Match(subject) {
			return pattern.source, true
		}
	}
	return types.IgnorePattern{}, false
}

// compileSegmentGlob compiles stem so that only `*` and `?` are wildcards.
func compileSegmentGlob(stem string) (glob.Glob, error) {
	var expression strings.Builder
	previousWasStar := false
	for _, character := range stem {
		switch character {
		case starCharacter:
			if !previousWasStar {
				expression.WriteRune(starCharacter)
			}
			previousWasStar = true
			continue
		case questionMarkCharacter:
			expression.WriteRune(questionMarkCharacter)
		default:
			expression.WriteString(glob.QuoteMeta(string(character)))
		}
		previousWasStar = false
	}
	return glob.Compile(expression.String(), globSeparator)
}
