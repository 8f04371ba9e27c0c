// Package output renders walked paths as text trees and delivers the text to sinks.
package output

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

const (
	// DefaultIndentUnit is repeated once per depth level below the root.
	DefaultIndentUnit = "    "

	branchConnector      = "├── "
	lastBranchConnector  = "└── "
	continuationGlyph    = "│"
	lineSeparator        = "\n"
	errorUnknownStyle    = "unknown connector style %q"
	errorEmptyIndentUnit = "indent unit must not be empty"
)

// TreeRenderer turns a sorted flat path list into an indented text tree.
type TreeRenderer struct {
	style      string
	indentUnit string
}

// NewTreeRenderer validates style and indentUnit. An empty style selects the uniform style.
func NewTreeRenderer(style string, indentUnit string) (TreeRenderer, error) {
	switch style {
	case "":
		style = types.ConnectorStyleUniform
	case types.ConnectorStyleUniform, types.ConnectorStyleClassic:
	default:
		return TreeRenderer{}, fmt.Errorf(errorUnknownStyle, style)
	}
	if indentUnit == "" {
		return TreeRenderer{}, errors.New(errorEmptyIndentUnit)
	}
	return TreeRenderer{style: style, indentUnit: indentUnit}, nil
}

// childrenIndex maps an ancestor path ("" for the root) to its sorted, distinct child names.
type childrenIndex map[string][]string

// buildChildrenIndex reconstructs nesting from path strings alone.
func buildChildrenIndex(entries []types.PathEntry) childrenIndex {
	childSets := make(map[string]map[string]struct{})
	for _, entry := range entries {
		segments := utils.SplitRelativePath(entry.Path)
		ancestorPath := ""
		for _, segment := range segments {
			children, exists := childSets[ancestorPath]
			if !exists {
				children = make(map[string]struct{})
				childSets[ancestorPath] = children
			}
			children[segment] = struct{}{}
			ancestorPath = utils.JoinRelativePath(ancestorPath, segment)
		}
	}

	index := make(childrenIndex, len(childSets))
	for ancestorPath, children := range childSets {
		names := make([]string, 0, len(children))
		for name := range children {
			names = append(names, name)
		}
		sort.Strings(names)
		index[ancestorPath] = names
	}
	return index
}

// Render returns the root line followed by one line per node, without a trailing newline.
func (renderer TreeRenderer) Render(rootName string, entries []types.PathEntry) string {
	index := buildChildrenIndex(entries)
	lines := []string{rootName}
	lines = renderer.appendChildren(lines, index, "", 0, "")
	return strings.Join(lines, lineSeparator)
}

func (renderer TreeRenderer) appendChildren(lines []string, index childrenIndex, ancestorPath string, depth int, prefix string) []string {
	children := index[ancestorPath]
	for childIndex, name := range children {
		childPath := utils.JoinRelativePath(ancestorPath, name)
		if renderer.style == types.ConnectorStyleClassic {
			isLast := childIndex == len(children)-1
			connector := branchConnector
			childPrefix := prefix + renderer.continuationUnit()
			if isLast {
				connector = lastBranchConnector
				childPrefix = prefix + renderer.blankUnit()
			}
			lines = append(lines, prefix+connector+name)
			lines = renderer.appendChildren(lines, index, childPath, depth+1, childPrefix)
			continue
		}
		lines = append(lines, strings.Repeat(renderer.indentUnit, depth)+branchConnector+name)
		lines = renderer.appendChildren(lines, index, childPath, depth+1, "")
	}
	return lines
}

// continuationUnit draws the vertical guide under a non-last ancestor.
func (renderer TreeRenderer) continuationUnit() string {
	return continuationGlyph + strings.Repeat(" ", len([]rune(renderer.indentUnit))-1)
}

// blankUnit pads under a last ancestor.
func (renderer TreeRenderer) blankUnit() string {
	return strings.Repeat(" ", len([]rune(renderer.indentUnit)))
}

// SummarizeEntries counts directories and files in entries.
func SummarizeEntries(entries []types.PathEntry) types.WalkSummary {
	var summary types.WalkSummary
	for _, entry := range entries {
		if entry.IsDirectory {
			summary.Directories++
		} else {
			summary.Files++
		}
	}
	return summary
}
