package summarizer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

const (
	openAIBackend = "openai"

	baseMaxOutputTokens  int64 = 256
	limitMaxOutputTokens int64 = 2048

	systemPromptTemplate = `Summarize the news article in one neutral paragraph.

Rules:
- Between %d and %d words.
- Keep the core facts: who, what, when, where, and key numbers.
- No lists, no headings, no commentary about the article itself.
- Output plain text in the same language as the article.`
)

// OpenAISummarizer calls OpenAI's Responses API to produce summaries.
type OpenAISummarizer struct {
	client openai.Client
	model  string
}

// NewOpenAISummarizer builds a new summarizer instance. Extra request options
// are appended after the API key, so tests can point the client at a local
// server with option.WithBaseURL.
func NewOpenAISummarizer(apiKey, model string, opts ...option.RequestOption) (*OpenAISummarizer, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("model is empty")
	}

	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)

	return &OpenAISummarizer{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Summarize produces a single summary of the article text.
func (s *OpenAISummarizer) Summarize(
	ctx context.Context,
	input Input,
) (string, error) {
	text, err := validateInput(openAIBackend, input)
	if err != nil {
		return "", err
	}

	userPromptBuilder := strings.Builder{}
	if sourceURL := strings.TrimSpace(input.SourceURL); sourceURL != "" {
		userPromptBuilder.WriteString("Source:\n")
		userPromptBuilder.WriteString(sourceURL)
		userPromptBuilder.WriteString("\n")
	}
	userPromptBuilder.WriteString("Content:\n")
	userPromptBuilder.WriteString(text)

	instructions := fmt.Sprintf(systemPromptTemplate, input.MinLength, input.MaxLength)

	maxOutputTokens := baseMaxOutputTokens
	for {
		resp, err := s.client.Responses.New(ctx, responses.ResponseNewParams{
			Model:           openai.ChatModel(s.model),
			MaxOutputTokens: openai.Int(maxOutputTokens),
			Temperature:     openai.Float(0),
			Instructions:    openai.String(instructions),
			Input: responses.ResponseNewParamsInputUnion{
				OfString: openai.String(userPromptBuilder.String()),
			},
		})
		if err != nil {
			return "", modelError(openAIBackend, fmt.Errorf("do request: %w", err))
		}

		if resp.Status == "incomplete" {
			if resp.IncompleteDetails.Reason == "max_output_tokens" && maxOutputTokens < limitMaxOutputTokens {
				maxOutputTokens *= 2
				if maxOutputTokens > limitMaxOutputTokens {
					maxOutputTokens = limitMaxOutputTokens
				}
				continue
			}
			return "", modelError(openAIBackend, fmt.Errorf(
				"response is incomplete (reason = %s, maxOutputTokens = %d)",
				resp.IncompleteDetails.Reason,
				maxOutputTokens,
			))
		}

		summary := strings.TrimSpace(resp.OutputText())
		if summary == "" {
			return "", modelError(openAIBackend, fmt.Errorf("output text is missing (status = %s)", resp.Status))
		}
		return summary, nil
	}
}
