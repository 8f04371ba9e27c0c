// Package commands contains the core logic behind each structmd command.
package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/structmd/internal/filter"
	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

var (
	// ErrRootNotDirectory is returned when the traversal root exists but is not a directory.
	ErrRootNotDirectory = errors.New("traversal root is not a directory")
	// ErrEntryBudgetExceeded is returned when a walk would emit more entries than MaxEntries.
	ErrEntryBudgetExceeded = errors.New("entry budget exceeded")
)

const (
	// errorStatRootFormat is used when the traversal root cannot be inspected.
	errorStatRootFormat = "inspecting traversal root %s: %w"
	// errorRootNotDirectoryFormat is used when the traversal root is a file.
	errorRootNotDirectoryFormat = "%s: %w"
	// errorReadRootFormat is used when the traversal root cannot be listed.
	errorReadRootFormat = "reading traversal root %s: %w"
	// errorEntryBudgetFormat is used when the walk exceeds its entry budget.
	errorEntryBudgetFormat = "walking %s: %w (limit %d)"
	// errorMissingFilter is used when a walker is used without a filter.
	errorMissingFilter = "tree walker requires a path filter"

	skipSubdirectoryMessage = "skipping subdirectory that cannot be listed"
	excludedEntryMessage    = "excluded path"
	skippedEntryMessage     = "skipped path"
	depthLimitMessage       = "depth limit reached; not descending"
)

// TreeWalker traverses a directory tree and returns the included entries in sorted order.
// Excluded directories are never listed.
type TreeWalker struct {
	FileSystem afero.Fs
	Filter     *filter.PathFilter
	Logger     utils.Logger
	// MaxDepth limits descent: entries deeper than MaxDepth levels below the root are not
	// visited. Zero means unlimited.
	MaxDepth int
	// MaxEntries aborts the walk with ErrEntryBudgetExceeded once more entries would be
	// emitted. Zero means unlimited.
	MaxEntries int
	// Workers above one lists subdirectories concurrently with at most Workers extra goroutines.
	Workers int
	// SkipPaths are relative paths left out of the walk by exact comparison, without
	// pattern matching.
	SkipPaths []string
}

type walkState struct {
	walker     *TreeWalker
	fileSystem afero.Fs
	logger     utils.Logger
	group      *errgroup.Group
	mutex      sync.Mutex
	entries    []types.PathEntry
	entryCount atomic.Int64
	skipPaths  map[string]struct{}

	// truncatedDirectories counts directories left unlisted because of MaxDepth.
	truncatedDirectories atomic.Int64
}

// Walk traverses rootDirectoryPath. A missing, non-directory, or unlistable root is
// returned as an error together with an empty result. Subdirectories that cannot be
// listed are logged and skipped.
func (walker *TreeWalker) Walk(ctx context.Context, rootDirectoryPath string) ([]types.PathEntry, error) {
	if walker.Filter == nil {
		return nil, errors.New(errorMissingFilter)
	}
	state := &walkState{
		walker:     walker,
		fileSystem: walker.FileSystem,
		logger:     utils.LoggerOrNop(walker.Logger),
		skipPaths:  make(map[string]struct{}, len(walker.SkipPaths)),
	}
	for _, skipPath := range walker.SkipPaths {
		state.skipPaths[strings.Join(utils.SplitRelativePath(skipPath), types.PathSeparator)] = struct{}{}
	}
	if state.fileSystem == nil {
		state.fileSystem = afero.NewOsFs()
	}

	rootInfo, statError := state.fileSystem.Stat(rootDirectoryPath)
	if statError != nil {
		return []types.PathEntry{}, fmt.Errorf(errorStatRootFormat, rootDirectoryPath, statError)
	}
	if !rootInfo.IsDir() {
		return []types.PathEntry{}, fmt.Errorf(errorRootNotDirectoryFormat, rootDirectoryPath, ErrRootNotDirectory)
	}

	var walkError error
	if walker.Workers > 1 {
		group, groupContext := errgroup.WithContext(ctx)
		group.SetLimit(walker.Workers)
		state.group = group
		rootError := state.visitDirectory(groupContext, rootDirectoryPath, "", 0)
		groupError := group.Wait()
		if rootError != nil {
			walkError = rootError
		} else {
			walkError = groupError
		}
	} else {
		walkError = state.visitDirectory(ctx, rootDirectoryPath, "", 0)
	}
	if walkError != nil {
		if errors.Is(walkError, ErrEntryBudgetExceeded) {
			return []types.PathEntry{}, fmt.Errorf(errorEntryBudgetFormat, rootDirectoryPath, ErrEntryBudgetExceeded, walker.MaxEntries)
		}
		return []types.PathEntry{}, walkError
	}
	if truncated := state.truncatedDirectories.Load(); truncated > 0 {
		state.logger.Warn(depthLimitMessage, zap.Int("maxDepth", walker.MaxDepth), zap.Int64("directories", truncated))
	}

	return sortAndDeduplicate(state.entries), nil
}

// visitDirectory lists one directory and records every included child. It returns an
// error only for conditions that end the whole walk.
func (state *walkState) visitDirectory(ctx context.Context, absolutePath string, relativePath string, depth int) error {
	if contextError := ctx.Err(); contextError != nil {
		return contextError
	}

	directoryListing, readError := afero.ReadDir(state.fileSystem, absolutePath)
	if readError != nil {
		if relativePath == "" {
			return fmt.Errorf(errorReadRootFormat, absolutePath, readError)
		}
		state.logger.Warn(skipSubdirectoryMessage, zap.String("path", relativePath), zap.Error(readError))
		return nil
	}

	childDepth := depth + 1
	for _, childInfo := range directoryListing {
		childRelativePath := utils.JoinRelativePath(relativePath, childInfo.Name())
		isDirectory := childInfo.IsDir()
		if _, skipped := state.skipPaths[childRelativePath]; skipped {
			state.logger.Debug(skippedEntryMessage, zap.String("path", childRelativePath))
			continue
		}

		filterPath := childRelativePath
		if isDirectory {
			filterPath += types.PathSeparator
		}
		if pattern, excluded := state.walker.Filter.MatchingPattern(filterPath); excluded {
			state.logger.Debug(excludedEntryMessage, zap.String("path", filterPath), zap.String("pattern", pattern.Glob))
			continue
		}

		if recordError := state.record(types.PathEntry{Path: childRelativePath, IsDirectory: isDirectory}); recordError != nil {
			return recordError
		}
		if !isDirectory {
			continue
		}
		if state.walker.MaxDepth > 0 && childDepth >= state.walker.MaxDepth {
			state.logger.Debug(depthLimitMessage, zap.String("path", childRelativePath), zap.Int("maxDepth", state.walker.MaxDepth))
			state.truncatedDirectories.Add(1)
			continue
		}

		childAbsolutePath := filepath.Join(absolutePath, childInfo.Name())
		if state.group == nil {
			if visitError := state.visitDirectory(ctx, childAbsolutePath, childRelativePath, childDepth); visitError != nil {
				return visitError
			}
			continue
		}
		visitChild := func() error {
			return state.visitDirectory(ctx, childAbsolutePath, childRelativePath, childDepth)
		}
		if !state.group.TryGo(visitChild) {
			if visitError := visitChild(); visitError != nil {
				return visitError
			}
		}
	}
	return nil
}

// record appends entry to the accumulator, enforcing MaxEntries.
func (state *walkState) record(entry types.PathEntry) error {
	recordedCount := state.entryCount.Add(1)
	if state.walker.MaxEntries > 0 && recordedCount > int64(state.walker.MaxEntries) {
		return ErrEntryBudgetExceeded
	}
	state.mutex.Lock()
	state.entries = append(state.entries, entry)
	state.mutex.Unlock()
	return nil
}

// sortAndDeduplicate orders entries lexicographically by path and drops repeated paths.
func sortAndDeduplicate(entries []types.PathEntry) []types.PathEntry {
	sorted := make([]types.PathEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(leftIndex, rightIndex int) bool {
		return sorted[leftIndex].Path < sorted[rightIndex].Path
	})
	result := make([]types.PathEntry, 0, len(sorted))
	for _, entry := range sorted {
		if len(result) > 0 && result[len(result)-1].Path == entry.Path {
			continue
		}
		result = append(result, entry)
	}
	return result
}
