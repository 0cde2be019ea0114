package summarizer

import (
	"context"
	"strings"
	"unicode"
)

const leadBackend = "lead"

// LeadSummarizer is an offline extractive backend: it keeps the opening
// sentences of the article, which carry the lede in most news writing.
// Bounds are counted in words.
type LeadSummarizer struct{}

func NewLeadSummarizer() *LeadSummarizer {
	return &LeadSummarizer{}
}

func (s *LeadSummarizer) Summarize(_ context.Context, input Input) (string, error) {
	text, err := validateInput(leadBackend, input)
	if err != nil {
		return "", err
	}

	var (
		kept  []string
		count int
	)

	for _, sentence := range splitSentences(text) {
		words := strings.Fields(sentence)
		if count+len(words) > input.MaxLength {
			// Cut mid-sentence to stay under the upper bound.
			kept = append(kept, strings.Join(words[:input.MaxLength-count], " ")+"...")
			break
		}

		kept = append(kept, strings.Join(words, " "))
		count += len(words)

		if count > 0 && count >= input.MinLength {
			break
		}
	}

	return strings.Join(kept, " "), nil
}

func splitSentences(text string) []string {
	var (
		sentences []string
		start     int
	)

	runes := []rune(text)
	for i, r := range runes {
		end := false
		switch {
		case r == '\n':
			end = true
		case r == '.' || r == '!' || r == '?':
			end = i+1 == len(runes) || unicode.IsSpace(runes[i+1])
		}

		if !end {
			continue
		}

		if sentence := strings.TrimSpace(string(runes[start : i+1])); sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}

	return sentences
}
