package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/temirov/structmd/internal/config"
	"github.com/temirov/structmd/internal/filter"
	"github.com/temirov/structmd/internal/output"
	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

const (
	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"
	// errorBuildFilterFormat is used when the pattern set cannot be compiled.
	errorBuildFilterFormat = "building path filter for %s: %w"
	// errorBuildTreeFormat is used when walking the tree fails.
	errorBuildTreeFormat = "building tree for %s: %w"

	walkCompletedMessage = "walked directory tree"
)

// GenerateOptions configures one tree generation.
type GenerateOptions struct {
	FileSystem afero.Fs
	RootPath   string
	// IgnoreFiles are read in order; relative paths resolve against RootPath.
	IgnoreFiles     []string
	ExcludePatterns []string
	ConnectorStyle  string
	IndentUnit      string
	MaxDepth        int
	MaxEntries      int
	Workers         int
	// SkipPaths are root-relative paths omitted by exact comparison.
	SkipPaths []string
	Logger    utils.Logger
}

// GenerateResult is the outcome of a successful generation.
type GenerateResult struct {
	RootPath string
	RootName string
	Entries  []types.PathEntry
	Summary  types.WalkSummary
	Text     string
}

// Generate loads the pattern set, walks RootPath, and renders the included entries.
// Nothing is rendered when the root cannot be walked.
func Generate(ctx context.Context, options GenerateOptions) (GenerateResult, error) {
	logger := utils.LoggerOrNop(options.Logger)
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	renderer, rendererError := output.NewTreeRenderer(options.ConnectorStyle, indentOrDefault(options.IndentUnit))
	if rendererError != nil {
		return GenerateResult{}, rendererError
	}

	absoluteRootPath, absolutePathError := filepath.Abs(options.RootPath)
	if absolutePathError != nil {
		return GenerateResult{}, fmt.Errorf(errorAbsolutePathFormat, options.RootPath, absolutePathError)
	}

	sources := make([]config.PatternSource, 0, len(options.IgnoreFiles))
	for _, ignoreFile := range options.IgnoreFiles {
		sources = append(sources, config.PatternSource{
			FileSystem: fileSystem,
			Path:       utils.ResolveAgainst(absoluteRootPath, ignoreFile),
		})
	}
	patternSet := config.LoadPatternSet(sources, options.ExcludePatterns, logger)

	pathFilter, filterError := filter.New(patternSet)
	if filterError != nil {
		return GenerateResult{}, fmt.Errorf(errorBuildFilterFormat, absoluteRootPath, filterError)
	}

	walker := &TreeWalker{
		FileSystem: fileSystem,
		Filter:     pathFilter,
		Logger:     logger,
		MaxDepth:   options.MaxDepth,
		MaxEntries: options.MaxEntries,
		Workers:    options.Workers,
		SkipPaths:  options.SkipPaths,
	}
	entries, walkError := walker.Walk(ctx, absoluteRootPath)
	if walkError != nil {
		return GenerateResult{}, fmt.Errorf(errorBuildTreeFormat, options.RootPath, walkError)
	}

	summary := output.SummarizeEntries(entries)
	logger.Debug(walkCompletedMessage,
		zap.String("root", absoluteRootPath),
		zap.Int("directories", summary.Directories),
		zap.Int("files", summary.Files),
	)

	rootName := utils.RootDisplayName(absoluteRootPath)
	return GenerateResult{
		RootPath: absoluteRootPath,
		RootName: rootName,
		Entries:  entries,
		Summary:  summary,
		Text:     renderer.Render(rootName, entries),
	}, nil
}

func indentOrDefault(indentUnit string) string {
	if indentUnit == "" {
		return output.DefaultIndentUnit
	}
	return indentUnit
}
