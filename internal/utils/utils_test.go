package utils_test

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/structmd/internal/utils"
)

// nestedRelativePath defines a relative path with three segments.
const nestedRelativePath = "src/pkg/main.go"

// backslashRelativePath defines the same path written with Windows separators.
const backslashRelativePath = `src\pkg\main.go`

// TestDeduplicatePatterns verifies that the first occurrence wins and order is preserved.
func TestDeduplicatePatterns(testingHandle *testing.T) {
	inputPatterns := []string{"build/", "*.tmp", "build/", "dist/", "*.tmp"}
	expectedPatterns := []string{"build/", "*.tmp", "dist/"}
	result := utils.DeduplicatePatterns(inputPatterns)
	if !reflect.DeepEqual(result, expectedPatterns) {
		testingHandle.Fatalf("unexpected patterns: got %v want %v", result, expectedPatterns)
	}
}

// TestNormalizeSeparators verifies backslashes are rewritten to forward slashes.
func TestNormalizeSeparators(testingHandle *testing.T) {
	if result := utils.NormalizeSeparators(backslashRelativePath); result != nestedRelativePath {
		testingHandle.Fatalf("expected %s, got %s", nestedRelativePath, result)
	}
}

// TestJoinRelativePath verifies joining against the root and against nested parents.
func TestJoinRelativePath(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		parent   string
		child    string
		expected string
	}{
		{name: "root parent", parent: "", child: "src", expected: "src"},
		{name: "nested parent", parent: "src/pkg", child: "main.go", expected: nestedRelativePath},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			if result := utils.JoinRelativePath(testCase.parent, testCase.child); result != testCase.expected {
				subTest.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

// TestSplitRelativePath verifies that separators of both kinds split and empty segments vanish.
func TestSplitRelativePath(testingHandle *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "empty", input: "", expected: []string{}},
		{name: "forward slashes", input: nestedRelativePath, expected: []string{"src", "pkg", "main.go"}},
		{name: "backslashes", input: backslashRelativePath, expected: []string{"src", "pkg", "main.go"}},
		{name: "trailing separator", input: "build/", expected: []string{"build"}},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			result := utils.SplitRelativePath(testCase.input)
			if !reflect.DeepEqual(result, testCase.expected) {
				subTest.Fatalf("unexpected segments: got %v want %v", result, testCase.expected)
			}
		})
	}
}

// TestRootDisplayName verifies the synthetic root line carries a trailing separator.
func TestRootDisplayName(testingHandle *testing.T) {
	rootDirectory := filepath.Join(testingHandle.TempDir(), "project")
	if result := utils.RootDisplayName(rootDirectory); result != "project/" {
		testingHandle.Fatalf("expected project/, got %s", result)
	}
}

// TestResolveAgainst verifies relative candidates are joined and absolute ones are kept.
func TestResolveAgainst(testingHandle *testing.T) {
	baseDirectory := testingHandle.TempDir()
	absoluteCandidate := filepath.Join(baseDirectory, "elsewhere", utils.GitIgnoreFileName)
	if result := utils.ResolveAgainst(baseDirectory, absoluteCandidate); result != absoluteCandidate {
		testingHandle.Fatalf("expected %s, got %s", absoluteCandidate, result)
	}
	expectedJoined := filepath.Join(baseDirectory, utils.GitIgnoreFileName)
	if result := utils.ResolveAgainst(baseDirectory, utils.GitIgnoreFileName); result != expectedJoined {
		testingHandle.Fatalf("expected %s, got %s", expectedJoined, result)
	}
}

func TestFormatFileSize(t *testing.T) {
	testCases := []struct {
		name     string
		bytes    int64
		expected string
	}{
		{name: "negative", bytes: -1, expected: "0b"},
		{name: "zero", bytes: 0, expected: "0b"},
		{name: "bytes", bytes: 512, expected: "512b"},
		{name: "one kilobyte", bytes: 1024, expected: "1kb"},
		{name: "fractional kilobyte", bytes: 1536, expected: "1.5kb"},
		{name: "ten megabytes", bytes: 10 * 1024 * 1024, expected: "10mb"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if result := utils.FormatFileSize(testCase.bytes); result != testCase.expected {
				t.Fatalf("expected %s, got %s", testCase.expected, result)
			}
		})
	}
}

func TestPluralize(t *testing.T) {
	if result := utils.Pluralize(1, "file", "files"); result != "1 file" {
		t.Fatalf("unexpected singular form %q", result)
	}
	if result := utils.Pluralize(3, "file", "files"); result != "3 files" {
		t.Fatalf("unexpected plural form %q", result)
	}
}
