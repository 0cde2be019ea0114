package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	huggingFaceBackend = "huggingface"

	maxInferenceResponseBytes = 1 << 20

	warmupText = "The summarization service started and sent this short text so that " +
		"the hosted model is loaded before the first reader asks for a summary."
)

// HuggingFaceSummarizer calls the Hugging Face Inference API summarization
// task with greedy decoding.
type HuggingFaceSummarizer struct {
	client   *http.Client
	endpoint string
	token    string
	log      *slog.Logger
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
	Options    hfOptions    `json:"options"`
}

type hfParameters struct {
	MinLength int  `json:"min_length"`
	MaxLength int  `json:"max_length"`
	DoSample  bool `json:"do_sample"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type hfSummary struct {
	SummaryText string `json:"summary_text"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func NewHuggingFaceSummarizer(
	baseURL string,
	model string,
	token string,
	timeout time.Duration,
	log *slog.Logger,
) (*HuggingFaceSummarizer, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	model = strings.Trim(strings.TrimSpace(model), "/")
	if model == "" {
		return nil, errors.New("model is empty")
	}

	endpoint, err := url.JoinPath(baseURL, model)
	if err != nil {
		return nil, fmt.Errorf("build endpoint: %w", err)
	}

	if u, parseErr := url.Parse(endpoint); parseErr != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", baseURL)
	}

	return &HuggingFaceSummarizer{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
		log:      log,
	}, nil
}

func (s *HuggingFaceSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	text, err := validateInput(huggingFaceBackend, input)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(hfRequest{
		Inputs: text,
		Parameters: hfParameters{
			MinLength: input.MinLength,
			MaxLength: input.MaxLength,
			DoSample:  false,
		},
		Options: hfOptions{WaitForModel: true},
	})
	if err != nil {
		return "", modelError(huggingFaceBackend, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", modelError(huggingFaceBackend, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", modelError(huggingFaceBackend, fmt.Errorf("do request: %w", err))
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			s.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"endpoint", s.endpoint,
				"operation", "Summarize")
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxInferenceResponseBytes))
	if err != nil {
		return "", modelError(huggingFaceBackend, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return "", modelError(huggingFaceBackend, inferenceError(resp.StatusCode, body))
	}

	var summaries []hfSummary
	if err = json.Unmarshal(body, &summaries); err != nil {
		return "", modelError(huggingFaceBackend, fmt.Errorf("decode response: %w", err))
	}

	if len(summaries) == 0 {
		return "", modelError(huggingFaceBackend, errors.New("response has no summaries"))
	}

	summary := strings.TrimSpace(summaries[0].SummaryText)
	if summary == "" {
		return "", modelError(huggingFaceBackend, errors.New("output text is missing"))
	}

	return summary, nil
}

// Warmup sends one short request so the hosted model is loaded before the
// first user request.
func (s *HuggingFaceSummarizer) Warmup(ctx context.Context) error {
	_, err := s.Summarize(ctx, Input{Text: warmupText, MinLength: 5, MaxLength: 20})

	return err
}

func inferenceError(status int, body []byte) error {
	var apiErr hfError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != "" {
		if apiErr.EstimatedTime > 0 {
			return fmt.Errorf("unexpected status: %d: %s (estimated time = %.0fs)",
				status, apiErr.Error, apiErr.EstimatedTime)
		}
		return fmt.Errorf("unexpected status: %d: %s", status, apiErr.Error)
	}

	return fmt.Errorf("unexpected status: %d", status)
}
