// Package utils contains general helper functions used across structmd.
package utils

import (
	"path/filepath"
	"strings"
)

const (
	pathSegmentSeparator = "/"
	windowsSeparator     = "\\"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// NormalizeSeparators rewrites every backslash to a forward slash so that
// paths and patterns compare the same way on every platform.
func NormalizeSeparators(value string) string {
	return strings.ReplaceAll(value, windowsSeparator, pathSegmentSeparator)
}

// JoinRelativePath appends name to a slash-separated parent path.
// The root is represented by the empty string.
func JoinRelativePath(parentPath string, name string) string {
	if parentPath == "" {
		return name
	}
	return parentPath + pathSegmentSeparator + name
}

// SplitRelativePath splits a slash-separated relative path into its segments.
// Empty segments produced by duplicate or trailing separators are dropped.
func SplitRelativePath(relativePath string) []string {
	rawSegments := strings.Split(NormalizeSeparators(relativePath), pathSegmentSeparator)
	segments := make([]string, 0, len(rawSegments))
	for _, segment := range rawSegments {
		if segment == "" {
			continue
		}
		segments = append(segments, segment)
	}
	return segments
}

// RootDisplayName returns the name used for the synthetic root line of a tree.
func RootDisplayName(absoluteRootPath string) string {
	baseName := filepath.Base(filepath.Clean(absoluteRootPath))
	if baseName == "" || baseName == "." || baseName == string(filepath.Separator) {
		baseName = absoluteRootPath
	}
	return strings.TrimSuffix(NormalizeSeparators(baseName), pathSegmentSeparator) + pathSegmentSeparator
}

// ResolveAgainst returns candidate unchanged when it is absolute and joined with base otherwise.
func ResolveAgainst(base string, candidate string) string {
	if candidate == "" || filepath.IsAbs(candidate) {
		return candidate
	}
	return filepath.Join(base, candidate)
}
