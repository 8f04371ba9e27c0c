// Package tokenizer estimates how many model tokens a rendered tree occupies.
package tokenizer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

type tiktokenCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter tiktokenCounter) Name() string {
	return counter.name
}

func (counter tiktokenCounter) CountString(input string) (int, error) {
	if counter.encoding == nil {
		return 0, errors.New("nil tiktoken encoder")
	}
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns a Counter for model. Unknown models fall back to the
// cl100k_base encoding, whose name is then reported by Counter.Name.
func NewCounter(model string) (Counter, error) {
	normalizedModel := strings.ToLower(strings.TrimSpace(model))
	if normalizedModel == "" {
		normalizedModel = defaultModel
	}
	if encoding, err := tiktoken.EncodingForModel(normalizedModel); err == nil && encoding != nil {
		return tiktokenCounter{encoding: encoding, name: normalizedModel}, nil
	}
	fallback, fallbackErr := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackErr != nil {
		return nil, fmt.Errorf("initialize tokenizer for %s: %w", normalizedModel, fallbackErr)
	}
	return tiktokenCounter{encoding: fallback, name: defaultEncodingName}, nil
}

// CountRendered counts the tokens of content with counter.
func CountRendered(counter Counter, content string) (int, error) {
	if counter == nil {
		return 0, errors.New("token counter is nil")
	}
	tokens, countErr := counter.CountString(content)
	if countErr != nil {
		return 0, fmt.Errorf("count tokens with %s: %w", counter.Name(), countErr)
	}
	return tokens, nil
}
