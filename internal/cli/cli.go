// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/structmd/internal/commands"
	"github.com/temirov/structmd/internal/config"
	"github.com/temirov/structmd/internal/output"
	"github.com/temirov/structmd/internal/tokenizer"
	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

const (
	defaultPath          = "."
	rootUse              = "structmd [root]"
	rootShortDescription = "render a filtered directory tree"
	rootLongDescription  = `structmd walks a directory, drops every path excluded by the ignore patterns,
and writes the remaining entries as an indented tree (project_structure.md by default).
Running structmd without a subcommand is the same as running structmd generate.`
	versionTemplate = "structmd version: {{.Version}}\n"

	generateUse              = "generate [root]"
	generateAlias            = "g"
	generateShortDescription = "render the directory tree of root (" + generateAlias + ")"
	generateLongDescription  = `Render the directory tree of root (the working directory by default).
Patterns are read from each --ignore-file, then from --exclude. The .git directory is always excluded.`
	generateUsageExample = `  # Write project_structure.md for the current directory
  structmd generate

  # Print a classic tree of ./src without build output
  structmd g ./src --style classic -e 'build/' -o -`

	configUse                  = "config"
	configShortDescription     = "manage structmd configuration"
	configInitUse              = "init"
	configInitShortDescription = "write the default configuration file"
	globalFlagName             = "global"
	forceFlagName              = "force"
	globalFlagDescription      = "write the global configuration instead of the local one"
	forceFlagDescription       = "overwrite an existing configuration file"

	workingDirectoryErrorFormat = "unable to determine working directory: %w"
	errorLoggerFormat           = "initialize logger: %w"
	errorLoadConfigFormat       = "load configuration: %w"
	errorRelativeOutputFormat   = "relate output %s to root %s: %w"

	generatedMessage         = "wrote project structure"
	tokenCountMessage        = "counted tokens"
	configInitializedMessage = "wrote configuration"
)

// Dependencies are the capabilities the commands run against. Zero values select the
// operating system.
type Dependencies struct {
	FileSystem       afero.Fs
	WorkingDirectory string
	HomeDirectory    string
	// LoggerFactory builds the logger once --verbose is known.
	LoggerFactory func(verbose bool) (*zap.Logger, error)
	// CopyText replaces the system clipboard writer used by --copy.
	CopyText func(text string) error
	// NewTokenCounter replaces the tokenizer used by --tokens.
	NewTokenCounter func(model string) (tokenizer.Counter, error)
}

func (dependencies Dependencies) withDefaults() Dependencies {
	if dependencies.FileSystem == nil {
		dependencies.FileSystem = afero.NewOsFs()
	}
	if dependencies.LoggerFactory == nil {
		dependencies.LoggerFactory = utils.NewApplicationLogger
	}
	if dependencies.NewTokenCounter == nil {
		dependencies.NewTokenCounter = tokenizer.NewCounter
	}
	return dependencies
}

// runtime is the state shared by the commands of one invocation.
type runtime struct {
	dependencies Dependencies
	configPath   string
	verbose      bool
	logger       *zap.Logger
}

// Execute runs the structmd application.
func Execute() error {
	rootCommand := NewRootCommand(Dependencies{})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	state := &runtime{dependencies: dependencies.withDefaults()}
	var rootFlags generateFlags

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Version:       utils.GetApplicationVersion(),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			logger, loggerError := state.dependencies.LoggerFactory(state.verbose)
			if loggerError != nil {
				return fmt.Errorf(errorLoggerFormat, loggerError)
			}
			state.logger = logger
			return nil
		},
		PersistentPostRun: func(command *cobra.Command, arguments []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return state.runGenerate(command, arguments, rootFlags)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)
	rootCommand.PersistentFlags().StringVar(&state.configPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &state.verbose, verboseFlagName, verboseFlagDescription)
	bindGenerateFlags(rootCommand, &rootFlags)

	rootCommand.AddCommand(
		createGenerateCommand(state),
		createConfigCommand(state),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// createGenerateCommand returns the generate subcommand.
func createGenerateCommand(state *runtime) *cobra.Command {
	var flags generateFlags
	generateCommand := &cobra.Command{
		Use:     generateUse,
		Aliases: []string{generateAlias},
		Short:   generateShortDescription,
		Long:    generateLongDescription,
		Example: generateUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return state.runGenerate(command, arguments, flags)
		},
	}
	bindGenerateFlags(generateCommand, &flags)
	return generateCommand
}

// createConfigCommand returns the config command and its init subcommand.
func createConfigCommand(state *runtime) *cobra.Command {
	configCommand := &cobra.Command{
		Use:   configUse,
		Short: configShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	var global bool
	var force bool
	initCommand := &cobra.Command{
		Use:   configInitUse,
		Short: configInitShortDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{
				FileSystem:       state.dependencies.FileSystem,
				Target:           target,
				Force:            force,
				WorkingDirectory: state.dependencies.WorkingDirectory,
				HomeDirectory:    state.dependencies.HomeDirectory,
			})
			if initError != nil {
				return initError
			}
			state.logger.Info(configInitializedMessage, zap.String("path", writtenPath))
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, forceFlagDescription)
	configCommand.AddCommand(initCommand)
	return configCommand
}

// runGenerate renders the tree of the requested root and delivers it to every sink.
func (state *runtime) runGenerate(command *cobra.Command, arguments []string, flags generateFlags) error {
	workingDirectory, workingDirectoryError := state.workingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}

	configuration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		FileSystem:       state.dependencies.FileSystem,
		WorkingDirectory: workingDirectory,
		HomeDirectory:    state.dependencies.HomeDirectory,
		ExplicitFilePath: state.configPath,
	})
	if configurationError != nil {
		return fmt.Errorf(errorLoadConfigFormat, configurationError)
	}
	settings, settingsError := resolveGenerateSettings(configuration.Generate, flags, command.Flags())
	if settingsError != nil {
		return settingsError
	}

	rootArgument := defaultPath
	if len(arguments) > 0 {
		rootArgument = arguments[0]
	}
	rootPath := filepath.Clean(utils.ResolveAgainst(workingDirectory, rootArgument))

	writesFile := settings.output != types.StandardOutputDestination
	outputPath := ""
	var skipPaths []string
	if writesFile {
		outputPath = filepath.Clean(utils.ResolveAgainst(workingDirectory, settings.output))
		relativeOutputPath, insideRoot, relateError := outputRelativePath(rootPath, outputPath)
		if relateError != nil {
			return relateError
		}
		if insideRoot {
			skipPaths = append(skipPaths, relativeOutputPath)
		}
	}

	result, generateError := commands.Generate(context.Background(), commands.GenerateOptions{
		FileSystem:      state.dependencies.FileSystem,
		RootPath:        rootPath,
		IgnoreFiles:     settings.ignoreFiles,
		ExcludePatterns: utils.DeduplicatePatterns(settings.exclude),
		ConnectorStyle:  settings.connectorStyle,
		IndentUnit:      settings.indent,
		MaxDepth:        settings.maxDepth,
		MaxEntries:      settings.maxEntries,
		Workers:         settings.workers,
		SkipPaths:       skipPaths,
		Logger:          state.logger,
	})
	if generateError != nil {
		return generateError
	}

	var sinks output.MultiSink
	if writesFile {
		sinks = append(sinks, output.FileSink{FileSystem: state.dependencies.FileSystem, Path: outputPath})
	} else {
		sinks = append(sinks, output.WriterSink{Writer: command.OutOrStdout()})
	}
	if settings.copy {
		sinks = append(sinks, output.ClipboardSink{CopyText: state.dependencies.CopyText})
	}
	if sinkError := sinks.Write(result.Text); sinkError != nil {
		return sinkError
	}

	destination := outputPath
	if !writesFile {
		destination = settings.output
	}
	state.logger.Info(generatedMessage,
		zap.String("root", result.RootPath),
		zap.String("destination", destination),
		zap.String("directories", utils.Pluralize(result.Summary.Directories, "directory", "directories")),
		zap.String("files", utils.Pluralize(result.Summary.Files, "file", "files")),
		zap.String("size", utils.FormatFileSize(int64(len(result.Text)))),
	)

	if settings.tokens {
		return state.reportTokens(result.Text, settings.model)
	}
	return nil
}

func (state *runtime) reportTokens(renderedTree string, model string) error {
	counter, counterError := state.dependencies.NewTokenCounter(model)
	if counterError != nil {
		return counterError
	}
	tokenCount, countError := tokenizer.CountRendered(counter, renderedTree)
	if countError != nil {
		return countError
	}
	state.logger.Info(tokenCountMessage, zap.Int("tokens", tokenCount), zap.String("model", counter.Name()))
	return nil
}

func (state *runtime) workingDirectory() (string, error) {
	if state.dependencies.WorkingDirectory != "" {
		return state.dependencies.WorkingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	return workingDirectory, nil
}

// outputRelativePath returns outputPath relative to rootPath, slash-separated, and
// whether outputPath lies inside rootPath at all. A destination inside the root is
// skipped by the walk so that regenerating does not list the previous output.
func outputRelativePath(rootPath string, outputPath string) (string, bool, error) {
	relativePath, relativeError := filepath.Rel(rootPath, outputPath)
	if relativeError != nil {
		return "", false, fmt.Errorf(errorRelativeOutputFormat, outputPath, rootPath, relativeError)
	}
	relativePath = filepath.ToSlash(relativePath)
	if relativePath == "." || relativePath == ".." || strings.HasPrefix(relativePath, "../") {
		return "", false, nil
	}
	return relativePath, true, nil
}

