// Package config loads ignore files into pattern sets and reads application configuration.
package config

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

const (
	// commentPrefix marks a line of an ignore file that carries no pattern.
	commentPrefix = "#"
	// directoryPatternSuffix marks a pattern that only names directories.
	directoryPatternSuffix = "/"

	missingPatternSourceMessage    = "ignore file not found; continuing without its patterns"
	unreadablePatternSourceMessage = "ignore file could not be read; continuing without its patterns"
	closePatternSourceMessage      = "failed to close ignore file"
)

// metadataPattern is appended to every pattern set regardless of configuration.
var metadataPattern = types.IgnorePattern{Glob: types.MetadataDirectoryName}

// PatternSource identifies one ignore file and the filesystem it lives on.
type PatternSource struct {
	FileSystem afero.Fs
	Path       string
}

// ReadPatternLines returns the pattern lines of an ignore file in file order.
// Blank lines and comment lines are dropped and surrounding whitespace is trimmed.
func ReadPatternLines(reader io.Reader) ([]string, error) {
	var patternLines []string
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patternLines = append(patternLines, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return patternLines, nil
}

// BuildPatternSet turns raw lines into a PatternSet. Lines are filtered the same way
// ReadPatternLines filters them, duplicates keep their first position, and the
// metadata directory pattern is appended last.
func BuildPatternSet(lines []string) types.PatternSet {
	var survivingLines []string
	for _, line := range lines {
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		survivingLines = append(survivingLines, trimmedLine)
	}

	deduplicatedLines := utils.DeduplicatePatterns(survivingLines)
	patterns := make([]types.IgnorePattern, 0, len(deduplicatedLines)+1)
	for _, line := range deduplicatedLines {
		patterns = append(patterns, types.IgnorePattern{
			Glob:               line,
			IsDirectoryPattern: strings.HasSuffix(utils.NormalizeSeparators(line), directoryPatternSuffix),
		})
	}
	patterns = append(patterns, metadataPattern)
	return types.NewPatternSet(patterns)
}

// LoadPatternSet reads every source in order, appends extraPatterns, and builds the PatternSet.
// A source that is missing or unreadable is logged and contributes no lines; loading never fails.
func LoadPatternSet(sources []PatternSource, extraPatterns []string, logger utils.Logger) types.PatternSet {
	logger = utils.LoggerOrNop(logger)
	var collectedLines []string
	for _, source := range sources {
		collectedLines = append(collectedLines, loadSourceLines(source, logger)...)
	}
	collectedLines = append(collectedLines, extraPatterns...)
	patternSet := BuildPatternSet(collectedLines)
	logger.Debug("loaded ignore patterns", zap.Int("patterns", patternSet.Len()))
	return patternSet
}

// loadSourceLines returns the lines of one source, or nil when the source cannot be read.
//
// #nosec G304
func loadSourceLines(source PatternSource, logger utils.Logger) []string {
	fileSystem := source.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	fileHandle, openError := fileSystem.Open(source.Path)
	if openError != nil {
		if errors.Is(openError, fs.ErrNotExist) {
			logger.Warn(missingPatternSourceMessage, zap.String("path", source.Path))
		} else {
			logger.Warn(unreadablePatternSourceMessage, zap.String("path", source.Path), zap.Error(openError))
		}
		return nil
	}
	defer func() {
		if closeError := fileHandle.Close(); closeError != nil {
			logger.Warn(closePatternSourceMessage, zap.String("path", source.Path), zap.Error(closeError))
		}
	}()

	patternLines, readError := ReadPatternLines(fileHandle)
	if readError != nil {
		logger.Warn(unreadablePatternSourceMessage, zap.String("path", source.Path), zap.Error(readError))
		return nil
	}
	return patternLines
}
