package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"newsbrief/internal/domain"
	"newsbrief/internal/summarizer"
)

type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateSummarizing State = "summarizing"
	StateRendered    State = "rendered"
	StateError       State = "error"
)

// Fetcher turns user input into an extracted article.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (domain.Article, error)
}

// Outcome is the result of one request. Err is nil only when State is
// StateRendered.
type Outcome struct {
	State   State
	Article domain.Article
	Result  domain.SummaryResult
	Err     *Error
}

type Option func(*Service)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTimeout bounds the whole fetch+summarize span. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		s.timeout = timeout
	}
}

// Service runs the fetch, summarize and measure steps for one request.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	fetcher    Fetcher
	summarizer summarizer.Summarizer
	bounds     domain.Bounds
	timeout    time.Duration
	now        func() time.Time
	log        *slog.Logger
}

func NewService(
	fetcher Fetcher,
	s summarizer.Summarizer,
	bounds domain.Bounds,
	log *slog.Logger,
	opts ...Option,
) *Service {
	svc := &Service{
		fetcher:    fetcher,
		summarizer: s,
		bounds:     bounds,
		now:        time.Now,
		log:        log,
	}

	for _, opt := range opts {
		opt(svc)
	}

	return svc
}

func (s *Service) Run(ctx context.Context, req domain.ArticleRequest) Outcome {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		s.log.InfoContext(ctx, "Request has empty URL")

		return Outcome{
			State: StateIdle,
			Err:   &Error{Kind: KindEmptyInput, Err: errors.New("URL is empty")},
		}
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()

	s.transition(ctx, StateIdle, StateFetching, "url", rawURL)

	article, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to fetch article",
			"error", err,
			"url", rawURL,
			"state", StateFetching)

		return Outcome{
			State: StateError,
			Err:   &Error{Kind: KindFetch, Err: err},
		}
	}

	originalWords := domain.WordCount(article.Body)

	s.transition(ctx, StateFetching, StateSummarizing,
		"url", article.URL,
		"originalWordCount", originalWords)

	summary, err := s.summarizer.Summarize(ctx, summarizer.Input{
		Text:      article.Body,
		SourceURL: article.URL,
		MinLength: s.bounds.MinLength,
		MaxLength: s.bounds.MaxLength,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to summarize article",
			"error", err,
			"url", article.URL,
			"state", StateSummarizing)

		return Outcome{
			State:   StateError,
			Article: article,
			Err:     &Error{Kind: KindModel, Err: err},
		}
	}

	elapsed := max(s.now().Sub(start).Seconds(), 0)

	result := domain.SummaryResult{
		SummaryText:       summary,
		OriginalWordCount: originalWords,
		SummaryWordCount:  domain.WordCount(summary),
		ElapsedSeconds:    elapsed,
	}

	s.transition(ctx, StateSummarizing, StateRendered,
		"url", article.URL,
		"originalWordCount", result.OriginalWordCount,
		"summaryWordCount", result.SummaryWordCount,
		"elapsedSeconds", result.ElapsedSeconds)

	return Outcome{
		State:   StateRendered,
		Article: article,
		Result:  result,
	}
}

func (s *Service) transition(ctx context.Context, from, to State, args ...any) {
	s.log.InfoContext(ctx, "Request state changed",
		append([]any{"from", from, "to", to}, args...)...)
}
