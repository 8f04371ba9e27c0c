package tokenizer_test

import (
	"errors"
	"testing"

	"github.com/temirov/structmd/internal/tokenizer"
)

type stubCounter struct {
	failure error
}

func (stubCounter) Name() string { return "stub" }

func (counter stubCounter) CountString(input string) (int, error) {
	if counter.failure != nil {
		return 0, counter.failure
	}
	return len([]rune(input)), nil
}

func TestCountRenderedUsesCounter(t *testing.T) {
	tokens, err := tokenizer.CountRendered(stubCounter{}, "root/\n├── a")
	if err != nil {
		t.Fatalf("CountRendered error: %v", err)
	}
	if tokens != 11 {
		t.Fatalf("expected 11 tokens, got %d", tokens)
	}
}

func TestCountRenderedWrapsFailure(t *testing.T) {
	failure := errors.New("encoder unavailable")
	if _, err := tokenizer.CountRendered(stubCounter{failure: failure}, "root/"); !errors.Is(err, failure) {
		t.Fatalf("expected wrapped failure, got %v", err)
	}
}

func TestCountRenderedRejectsNilCounter(t *testing.T) {
	if _, err := tokenizer.CountRendered(nil, "root/"); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}
