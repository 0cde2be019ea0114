package domain

import "strings"

type ArticleRequest struct {
	URL string
}

type Article struct {
	Title string
	Body  string
	URL   string
}

type Bounds struct {
	MinLength int
	MaxLength int
}

type SummaryResult struct {
	SummaryText       string
	OriginalWordCount int
	SummaryWordCount  int
	ElapsedSeconds    float64
}

// WordCount splits on whitespace only; it is not a linguistic tokenizer.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
