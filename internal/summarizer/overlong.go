package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"newsbrief/internal/config"
	"newsbrief/internal/domain"
)

// breakSeparators are tried in order when a cut point needs to land on a
// natural boundary.
var breakSeparators = []string{"\n\n", "\n", ". ", "! ", "? "}

// LengthGuard applies the overlong-input policy before text reaches a backend
// whose context window is limited.
type LengthGuard struct {
	next     Summarizer
	backend  string
	policy   string
	maxWords int
	log      *slog.Logger
}

func NewLengthGuard(
	next Summarizer,
	backend string,
	policy string,
	maxWords int,
	log *slog.Logger,
) *LengthGuard {
	return &LengthGuard{
		next:     next,
		backend:  backend,
		policy:   policy,
		maxWords: maxWords,
		log:      log,
	}
}

func (g *LengthGuard) Summarize(ctx context.Context, input Input) (string, error) {
	words := domain.WordCount(input.Text)
	if g.maxWords <= 0 || words <= g.maxWords {
		return g.next.Summarize(ctx, input)
	}

	switch g.policy {
	case config.PolicyReject:
		return "", &ModelError{
			Backend: g.backend,
			Err:     fmt.Errorf("input exceeds %d words (words = %d)", g.maxWords, words),
		}
	case config.PolicyChunk:
		return g.summarizeChunks(ctx, input, words)
	default:
		g.log.InfoContext(ctx, "Input is truncated",
			"url", input.SourceURL,
			"words", words,
			"maxWords", g.maxWords)

		input.Text = Truncate(input.Text, g.maxWords)

		return g.next.Summarize(ctx, input)
	}
}

func (g *LengthGuard) summarizeChunks(ctx context.Context, input Input, words int) (string, error) {
	pieces := SplitWindows(input.Text, g.maxWords)

	g.log.InfoContext(ctx, "Input is split into windows",
		"url", input.SourceURL,
		"words", words,
		"windows", len(pieces))

	// Partial summaries are merged level by level until they fit one window,
	// so no partial is ever cut off.
	for level := 1; ; level++ {
		partials := make([]string, 0, len(pieces))
		for i, piece := range pieces {
			partial, err := g.next.Summarize(ctx, Input{
				Text:      piece,
				SourceURL: input.SourceURL,
				MinLength: input.MinLength,
				MaxLength: input.MaxLength,
			})
			if err != nil {
				return "", fmt.Errorf("summarize window %d/%d at level %d: %w", i+1, len(pieces), level, err)
			}
			partials = append(partials, partial)
		}

		if len(partials) == 1 {
			return partials[0], nil
		}

		merged := strings.Join(partials, "\n\n")
		if domain.WordCount(merged) <= g.maxWords {
			input.Text = merged

			summary, err := g.next.Summarize(ctx, input)
			if err != nil {
				return "", fmt.Errorf("summarize merged windows: %w", err)
			}

			return summary, nil
		}

		next := SplitWindows(merged, g.maxWords)
		if len(next) >= len(pieces) {
			return "", &ModelError{
				Backend: g.backend,
				Err: fmt.Errorf("partial summaries do not shrink (level = %d, windows = %d)",
					level, len(next)),
			}
		}

		g.log.InfoContext(ctx, "Partial summaries are split again",
			"url", input.SourceURL,
			"level", level,
			"mergedWords", domain.WordCount(merged),
			"windows", len(next))

		pieces = next
	}
}

// Truncate keeps at most maxWords words of text, preferring to end on a
// paragraph or sentence boundary in the last fifth of the kept part.
func Truncate(text string, maxWords int) string {
	return strings.TrimSpace(text[:cutPoint(text, maxWords)])
}

// SplitWindows splits text into consecutive windows of at most maxWords
// words each, cutting on natural boundaries where possible.
func SplitWindows(text string, maxWords int) []string {
	var windows []string

	rest := strings.TrimSpace(text)
	for rest != "" {
		cut := cutPoint(rest, maxWords)
		if window := strings.TrimSpace(rest[:cut]); window != "" {
			windows = append(windows, window)
		}
		rest = strings.TrimSpace(rest[cut:])
	}

	return windows
}

func cutPoint(text string, maxWords int) int {
	end := wordBoundary(text, maxWords)
	if end == len(text) {
		return end
	}

	minKeep := end * 4 / 5
	head := text[minKeep:end]
	for _, sep := range breakSeparators {
		if idx := strings.LastIndex(head, sep); idx >= 0 {
			return minKeep + idx + len(sep)
		}
	}

	return end
}

// wordBoundary returns the byte offset just past the maxWords-th word, or
// len(text) when text is shorter.
func wordBoundary(text string, maxWords int) int {
	if maxWords <= 0 {
		return len(text)
	}

	count := 0
	inWord := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inWord {
				count++
				inWord = false
				if count == maxWords {
					return i
				}
			}
			continue
		}
		inWord = true
	}

	return len(text)
}
