package filter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/structmd/internal/config"
	"github.com/temirov/structmd/internal/filter"
)

func newFilter(t *testing.T, lines ...string) *filter.PathFilter {
	t.Helper()
	pathFilter, err := filter.New(config.BuildPatternSet(lines))
	require.NoError(t, err)
	return pathFilter
}

func TestExcludedMatrix(t *testing.T) {
	tests := []struct {
		name     string
		patterns []string
		path     string
		excluded bool
	}{
		{name: "root is never excluded", patterns: []string{"*"}, path: "", excluded: false},
		{name: "metadata directory", path: ".git/", excluded: true},
		{name: "metadata directory content", path: ".git/config", excluded: true},
		{name: "nested metadata directory", path: "a/.git/", excluded: true},
		{name: "nested metadata content", path: "a/.git/objects/pack", excluded: true},
		{name: "nested metadata file", path: "sub/.git", excluded: true},
		{name: "metadata lookalike", path: "a/.github/workflows", excluded: false},
		{name: "plain file kept", path: "a/b.txt", excluded: false},

		{name: "directory pattern matches directory", patterns: []string{"build/"}, path: "build/", excluded: true},
		{name: "directory pattern matches descendant", patterns: []string{"build/"}, path: "build/out/app.bin", excluded: true},
		{name: "directory pattern matches file equal to stem", patterns: []string{"build/"}, path: "build", excluded: true},
		{name: "directory pattern is matched against whole path", patterns: []string{"node_modules/"}, path: "web/node_modules/", excluded: false},
		{name: "directory pattern keeps nested descendants", patterns: []string{"node_modules/"}, path: "web/node_modules/react/index.js", excluded: false},
		{name: "directory pattern with wildcard stem", patterns: []string{"pkg?/vendor/"}, path: "pkg1/vendor/lib.go", excluded: true},
		{name: "directory pattern prefix lookalike", patterns: []string{"build/"}, path: "buildtools/main.go", excluded: false},

		{name: "plain glob top level", patterns: []string{"*.tmp"}, path: "a.tmp", excluded: true},
		{name: "plain glob keeps other extension", patterns: []string{"*.tmp"}, path: "a.txt", excluded: false},
		{name: "plain glob is matched against whole path", patterns: []string{"*.tmp"}, path: "src/cache/a.tmp", excluded: false},
		{name: "plain name does not match nested file", patterns: []string{"a.txt"}, path: "sub/a.txt", excluded: false},
		{name: "plain glob with directory part", patterns: []string{"src/*/a.tmp"}, path: "src/cache/a.tmp", excluded: true},
		{name: "plain glob matches directory", patterns: []string{"dist"}, path: "dist/", excluded: true},
		{name: "plain glob excludes descendants of matched directory", patterns: []string{"dist"}, path: "dist/app.js", excluded: true},
		{name: "question mark single character", patterns: []string{"?.md"}, path: "a.md", excluded: true},
		{name: "question mark needs exactly one character", patterns: []string{"?.md"}, path: "ab.md", excluded: false},

		{name: "star stays in one segment", patterns: []string{"docs/*.md"}, path: "docs/guide/intro.md", excluded: false},
		{name: "star matches direct child", patterns: []string{"docs/*.md"}, path: "docs/intro.md", excluded: true},
		{name: "pattern with directory part is not matched deeper", patterns: []string{"docs/*.md"}, path: "site/docs/intro.md", excluded: false},
		{name: "leading slash does not widen the match", patterns: []string{"/vendor/"}, path: "lib/vendor/", excluded: false},
		{name: "leading slash matches root level", patterns: []string{"/vendor/"}, path: "vendor/", excluded: true},
		{name: "directory pattern with directory part", patterns: []string{"docs/build/"}, path: "docs/build/index.html", excluded: true},

		{name: "double star behaves like single star", patterns: []string{"**.log"}, path: "app.log", excluded: true},
		{name: "double star does not cross separators", patterns: []string{"**.log"}, path: "logs/app.log", excluded: false},
		{name: "brackets are literal", patterns: []string{"[ab].txt"}, path: "a.txt", excluded: false},
		{name: "brackets match literally", patterns: []string{"[ab].txt"}, path: "[ab].txt", excluded: true},
		{name: "braces are literal", patterns: []string{"{a,b}.txt"}, path: "a.txt", excluded: false},

		{name: "backslash path normalized", patterns: []string{"build/"}, path: `build\out.o`, excluded: true},
		{name: "backslash pattern normalized", patterns: []string{`docs\build\`}, path: "docs/build/", excluded: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pathFilter := newFilter(t, tt.patterns...)
			assert.Equal(t, tt.excluded, pathFilter.Excluded(tt.path), "path %q patterns %v", tt.path, tt.patterns)
		})
	}
}

func TestMatchingPatternReportsFirstMatch(t *testing.T) {
	pathFilter := newFilter(t, "*.log", "logs/")

	pattern, excluded := pathFilter.MatchingPattern("logs/app.log")
	require.True(t, excluded)
	assert.Equal(t, "logs/", pattern.Glob)
	assert.True(t, pattern.IsDirectoryPattern)

	pattern, excluded = pathFilter.MatchingPattern("app.log")
	require.True(t, excluded)
	assert.Equal(t, "*.log", pattern.Glob)

	_, excluded = pathFilter.MatchingPattern("main.go")
	assert.False(t, excluded)
}

func TestEmptyStemIsSkipped(t *testing.T) {
	pathFilter := newFilter(t, "/")
	assert.False(t, pathFilter.Excluded("src/main.go"))
	assert.True(t, pathFilter.Excluded(".git/"))
}

func TestExcludedIsPure(t *testing.T) {
	pathFilter := newFilter(t, "build/", "*.tmp")
	for iteration := 0; iteration < 3; iteration++ {
		assert.True(t, pathFilter.Excluded("build/"))
		assert.False(t, pathFilter.Excluded("src/main.go"))
	}
}
