package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/temirov/structmd/internal/output"
	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

const defaultTokenizerName = "gpt-4o"

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	FileSystem       afero.Fs
	WorkingDirectory string
	HomeDirectory    string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Generate GenerateConfiguration `mapstructure:"generate" yaml:"generate"`
}

// GenerateConfiguration defines options of the generate command. Nil and empty
// values mean "not configured" so that merging can tell them apart from explicit zeroes.
type GenerateConfiguration struct {
	Output         string   `mapstructure:"output" yaml:"output"`
	IgnoreFiles    []string `mapstructure:"ignore_files" yaml:"ignore_files"`
	Exclude        []string `mapstructure:"exclude" yaml:"exclude"`
	ConnectorStyle string   `mapstructure:"connector_style" yaml:"connector_style"`
	Indent         *string  `mapstructure:"indent" yaml:"indent"`
	MaxDepth       *int     `mapstructure:"max_depth" yaml:"max_depth"`
	MaxEntries     *int     `mapstructure:"max_entries" yaml:"max_entries"`
	Workers        *int     `mapstructure:"workers" yaml:"workers"`
	Copy           *bool    `mapstructure:"copy" yaml:"copy"`
	Tokens         *bool    `mapstructure:"tokens" yaml:"tokens"`
	Model          string   `mapstructure:"model" yaml:"model"`
}

// DefaultApplicationConfiguration returns the values used when nothing is configured.
func DefaultApplicationConfiguration() ApplicationConfiguration {
	indentUnit := output.DefaultIndentUnit
	unlimited := 0
	singleWorker := 1
	disabled := false
	return ApplicationConfiguration{
		Generate: GenerateConfiguration{
			Output:         utils.DefaultOutputFileName,
			IgnoreFiles:    []string{utils.GitIgnoreFileName},
			Exclude:        []string{},
			ConnectorStyle: types.ConnectorStyleUniform,
			Indent:         &indentUnit,
			MaxDepth:       cloneInt(&unlimited),
			MaxEntries:     cloneInt(&unlimited),
			Workers:        &singleWorker,
			Copy:           cloneBool(&disabled),
			Tokens:         cloneBool(&disabled),
			Model:          defaultTokenizerName,
		},
	}
}

// LoadApplicationConfiguration loads configuration from the global and local files
// and overlays them on the defaults. Missing files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	fileSystem := options.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}

	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	merged := DefaultApplicationConfiguration()

	homeDirectory := options.HomeDirectory
	if homeDirectory == "" {
		if resolvedHome, err := os.UserHomeDir(); err == nil {
			homeDirectory = resolvedHome
		}
	}
	if homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(fileSystem, globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := filepath.Join(workingDirectory, utils.LocalConfigFileName)
	explicit := options.ExplicitFilePath != ""
	if explicit {
		localPath = utils.ResolveAgainst(workingDirectory, options.ExplicitFilePath)
	}
	localConfig, loadErr := loadConfigurationFromPath(fileSystem, localPath, explicit)
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Generate.Exclude = utils.DeduplicatePatterns(merged.Generate.Exclude)
	return merged, nil
}

// loadConfigurationFromPath decodes one configuration file. A missing file yields an
// empty configuration unless required is set.
func loadConfigurationFromPath(fileSystem afero.Fs, path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := fileSystem.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetFs(fileSystem)
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Generate = result.Generate.merge(override.Generate)
	return result
}

func (config GenerateConfiguration) merge(override GenerateConfiguration) GenerateConfiguration {
	result := config
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.IgnoreFiles != nil {
		result.IgnoreFiles = append([]string{}, override.IgnoreFiles...)
	}
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if override.ConnectorStyle != "" {
		result.ConnectorStyle = override.ConnectorStyle
	}
	if override.Indent != nil {
		result.Indent = cloneString(override.Indent)
	}
	if override.MaxDepth != nil {
		result.MaxDepth = cloneInt(override.MaxDepth)
	}
	if override.MaxEntries != nil {
		result.MaxEntries = cloneInt(override.MaxEntries)
	}
	if override.Workers != nil {
		result.Workers = cloneInt(override.Workers)
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	if override.Tokens != nil {
		result.Tokens = cloneBool(override.Tokens)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
