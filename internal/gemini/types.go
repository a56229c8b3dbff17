package gemini

import (
	"errors"
	"fmt"
)

const (
	MinCount = 1
	MaxCount = 5
)

// DefaultModels is the fallback order: newest and fastest first, then
// increasingly conservative models.
var DefaultModels = []string{
	"gemini-2.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-1.0-pro",
}

// ErrMissingCredential is returned when no text-generation API key is configured.
var ErrMissingCredential = errors.New("missing GOOGLE_API_KEY or GEMINI_API_KEY")

// SuggestionRequest describes one call to the generator.
type SuggestionRequest struct {
	DesiredCount   int
	ExistingTitles []string
	MoodHint       string
}

// SuggestionResult is what the first successful model produced.
type SuggestionResult struct {
	Items       []string `json:"items"`
	SourceModel string   `json:"model"`
}

// Attempt records the outcome of a single model call.
type Attempt struct {
	Model string
	Err   error
}

// GenerationError is returned when every candidate model failed or produced
// nothing usable. Last carries the most recent failure.
type GenerationError struct {
	Attempts []Attempt
	Last     error
}

func (e *GenerationError) Error() string {
	if e.Last == nil {
		return "all models failed"
	}
	return fmt.Sprintf("all models failed: %v", e.Last)
}

func (e *GenerationError) Unwrap() error {
	return e.Last
}

// ClampCount coerces a requested item count into [MinCount, MaxCount].
func ClampCount(n int) int {
	if n < MinCount {
		return MinCount
	}
	if n > MaxCount {
		return MaxCount
	}
	return n
}
