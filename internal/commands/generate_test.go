package commands_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/structmd/internal/commands"
	"github.com/temirov/structmd/internal/types"
	"github.com/temirov/structmd/internal/utils"
)

func generateOptions(fileSystem afero.Fs) commands.GenerateOptions {
	return commands.GenerateOptions{
		FileSystem:  fileSystem,
		RootPath:    memoryRoot,
		IgnoreFiles: []string{utils.GitIgnoreFileName},
		Logger:      zap.NewNop(),
	}
}

func TestGenerateScenarios(t *testing.T) {
	testCases := []struct {
		name         string
		files        []string
		ignoreFile   string
		expectedText string
	}{
		{
			name:         "metadata directory never appears",
			files:        []string{"a/b.txt", "a/.git/config"},
			expectedText: "project/\n├── a\n    ├── b.txt",
		},
		{
			name:         "directory pattern prunes subtree",
			files:        []string{"build/out/app.bin", "build/log.txt", "src/main.txt"},
			ignoreFile:   "build/\n",
			expectedText: "project/\n├── src\n    ├── main.txt",
		},
		{
			name:         "missing pattern source does not block generation",
			files:        []string{"readme.txt"},
			expectedText: "project/\n├── readme.txt",
		},
		{
			name:         "plain glob pattern excludes files",
			files:        []string{"a.tmp", "a.txt"},
			ignoreFile:   "# scratch files\n\n*.tmp\n",
			expectedText: "project/\n├── a.txt",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fileSystem := afero.NewMemMapFs()
			populate(t, fileSystem, memoryRoot, testCase.files...)
			if testCase.ignoreFile != "" {
				ignorePath := filepath.Join(memoryRoot, utils.GitIgnoreFileName)
				require.NoError(t, afero.WriteFile(fileSystem, ignorePath, []byte(testCase.ignoreFile), 0o644))
			}

			result, err := commands.Generate(context.Background(), generateOptions(fileSystem))
			require.NoError(t, err)
			expectedText := testCase.expectedText
			if testCase.ignoreFile != "" {
				expectedText = strings.Replace(expectedText, "project/\n", "project/\n├── .gitignore\n", 1)
			}
			assert.Equal(t, expectedText, result.Text)
		})
	}
}

func TestGenerateEmptyRootRendersOnlyRootLine(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	require.NoError(t, fileSystem.MkdirAll(memoryRoot, 0o755))

	result, err := commands.Generate(context.Background(), generateOptions(fileSystem))
	require.NoError(t, err)
	assert.Equal(t, "project/", result.Text)
	assert.Equal(t, "project/", result.RootName)
	assert.Empty(t, result.Entries)
}

func TestGenerateWarnsAboutMissingIgnoreFile(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	populate(t, fileSystem, memoryRoot, "readme.txt")
	observedCore, observedLogs := observer.New(zapcore.WarnLevel)

	options := generateOptions(fileSystem)
	options.Logger = zap.New(observedCore)
	_, err := commands.Generate(context.Background(), options)

	require.NoError(t, err)
	require.Equal(t, 1, observedLogs.Len())
	assert.Equal(t, filepath.Join(memoryRoot, utils.GitIgnoreFileName), observedLogs.All()[0].ContextMap()["path"])
}

func TestGenerateCombinesIgnoreFilesAndExcludes(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	populate(t, fileSystem, memoryRoot,
		"node_modules/lib/index.js",
		"web/node_modules/react/index.js",
		"web/app.js",
		"web/app.js.map",
		"notes.log",
		"docs/api/index.md",
		"api/handler.go",
	)
	require.NoError(t, afero.WriteFile(fileSystem, "/shared/ignore", []byte("node_modules/\n*.log\n"), 0o644))

	options := generateOptions(fileSystem)
	options.IgnoreFiles = []string{"/shared/ignore"}
	options.ExcludePatterns = []string{"web/*.map", "/api/", "*.log"}
	result, err := commands.Generate(context.Background(), options)
	require.NoError(t, err)

	assert.Equal(t, []types.PathEntry{
		{Path: "docs", IsDirectory: true},
		{Path: "docs/api", IsDirectory: true},
		{Path: "docs/api/index.md"},
		{Path: "web", IsDirectory: true},
		{Path: "web/app.js"},
		{Path: "web/node_modules", IsDirectory: true},
		{Path: "web/node_modules/react", IsDirectory: true},
		{Path: "web/node_modules/react/index.js"},
	}, result.Entries)
	assert.Equal(t, types.WalkSummary{Directories: 5, Files: 3}, result.Summary)
}

func TestGenerateSkipPathsAreNotPatterns(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	populate(t, fileSystem, memoryRoot, "out?.md", "outA.md")

	options := generateOptions(fileSystem)
	options.SkipPaths = []string{"out?.md"}
	result, err := commands.Generate(context.Background(), options)
	require.NoError(t, err)
	assert.Equal(t, "project/\n├── outA.md", result.Text)
}

func TestGenerateClassicStyle(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	populate(t, fileSystem, memoryRoot, "a/x.txt", "a/y.txt", "b.txt")

	options := generateOptions(fileSystem)
	options.ConnectorStyle = types.ConnectorStyleClassic
	result, err := commands.Generate(context.Background(), options)
	require.NoError(t, err)

	expected := strings.Join([]string{
		"project/",
		"├── a",
		"│   ├── x.txt",
		"│   └── y.txt",
		"└── b.txt",
	}, "\n")
	assert.Equal(t, expected, result.Text)
}

func TestGenerateIsDeterministic(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	populate(t, fileSystem, memoryRoot, "z/1.txt", "a/2.txt", "m/n/o/3.txt", "b.txt")

	options := generateOptions(fileSystem)
	first, err := commands.Generate(context.Background(), options)
	require.NoError(t, err)

	options.Workers = 3
	for iteration := 0; iteration < 3; iteration++ {
		next, nextErr := commands.Generate(context.Background(), options)
		require.NoError(t, nextErr)
		assert.Equal(t, first.Text, next.Text)
	}
}

func TestGenerateRejectsInvalidInputs(t *testing.T) {
	fileSystem := afero.NewMemMapFs()
	populate(t, fileSystem, memoryRoot, "file.txt")

	options := generateOptions(fileSystem)
	options.ConnectorStyle = "fancy"
	_, err := commands.Generate(context.Background(), options)
	assert.Error(t, err)

	options = generateOptions(fileSystem)
	options.RootPath = filepath.Join(memoryRoot, "file.txt")
	_, err = commands.Generate(context.Background(), options)
	assert.ErrorIs(t, err, commands.ErrRootNotDirectory)

	options = generateOptions(fileSystem)
	options.MaxEntries = 0
	options.RootPath = "/absent"
	result, err := commands.Generate(context.Background(), options)
	assert.Error(t, err)
	assert.Empty(t, result.Text)
}
