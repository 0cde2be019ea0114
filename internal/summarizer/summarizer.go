package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original plain text to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
	// MinLength and MaxLength bound the summary in model tokens (words for
	// backends without a tokenizer).
	MinLength int
	MaxLength int
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// ModelError is returned when inference cannot run or yields no summary.
type ModelError struct {
	Backend string
	Err     error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("summarize with %s: %v", e.Backend, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func modelError(backend string, err error) error {
	var modelErr *ModelError
	if errors.As(err, &modelErr) {
		return err
	}

	return &ModelError{Backend: backend, Err: err}
}

func validateInput(backend string, input Input) (string, error) {
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return "", modelError(backend, errors.New("input is empty"))
	}

	if input.MinLength < 0 || input.MaxLength <= 0 || input.MinLength > input.MaxLength {
		return "", modelError(backend, fmt.Errorf(
			"invalid bounds (min = %d, max = %d)", input.MinLength, input.MaxLength))
	}

	return text, nil
}
