package output

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"
)

// ErrEmptyDestination is returned by a FileSink without a path.
var ErrEmptyDestination = errors.New("output destination is empty")

const (
	outputFilePermissions      = 0o644
	outputDirectoryPermissions = 0o755

	errorCreateDirectoryFormat = "create output directory %s: %w"
	errorWriteFileFormat       = "write output file %s: %w"
	errorWriteStreamFormat     = "write rendered tree: %w"
	errorCopyClipboardFormat   = "copy rendered tree to clipboard: %w"
)

// Sink receives the rendered tree text.
type Sink interface {
	Write(content string) error
}

// FileSink writes the content to a file, creating missing parent directories.
// The content is written exactly as rendered.
type FileSink struct {
	FileSystem afero.Fs
	Path       string
}

// Write replaces the file at sink.Path with content.
func (sink FileSink) Write(content string) error {
	if sink.Path == "" {
		return ErrEmptyDestination
	}
	fileSystem := sink.FileSystem
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	parentDirectory := filepath.Dir(sink.Path)
	if mkdirError := fileSystem.MkdirAll(parentDirectory, outputDirectoryPermissions); mkdirError != nil {
		return fmt.Errorf(errorCreateDirectoryFormat, parentDirectory, mkdirError)
	}
	if writeError := afero.WriteFile(fileSystem, sink.Path, []byte(content), outputFilePermissions); writeError != nil {
		return fmt.Errorf(errorWriteFileFormat, sink.Path, writeError)
	}
	return nil
}

// WriterSink prints the content to a stream followed by a newline.
type WriterSink struct {
	Writer io.Writer
}

// Write prints content and a terminating newline.
func (sink WriterSink) Write(content string) error {
	if _, writeError := fmt.Fprintln(sink.Writer, content); writeError != nil {
		return fmt.Errorf(errorWriteStreamFormat, writeError)
	}
	return nil
}

// ClipboardSink copies the content to the system clipboard.
type ClipboardSink struct {
	// CopyText overrides the clipboard writer; nil uses the system clipboard.
	CopyText func(text string) error
}

// Write copies content to the clipboard.
func (sink ClipboardSink) Write(content string) error {
	copyText := sink.CopyText
	if copyText == nil {
		copyText = clipboard.WriteAll
	}
	if copyError := copyText(content); copyError != nil {
		return fmt.Errorf(errorCopyClipboardFormat, copyError)
	}
	return nil
}

// MultiSink writes to every sink in order and stops at the first failure.
type MultiSink []Sink

// Write delivers content to each sink.
func (sinks MultiSink) Write(content string) error {
	for _, sink := range sinks {
		if writeError := sink.Write(content); writeError != nil {
			return writeError
		}
	}
	return nil
}

var (
	_ Sink = FileSink{}
	_ Sink = WriterSink{}
	_ Sink = ClipboardSink{}
	_ Sink = MultiSink{}
)
