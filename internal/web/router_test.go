package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"newsbrief/internal/domain"
	"newsbrief/internal/pipeline"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	mu       sync.Mutex
	requests []domain.ArticleRequest
	outcome  pipeline.Outcome
}

func (r *stubRunner) Run(_ context.Context, req domain.ArticleRequest) pipeline.Outcome {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = append(r.requests, req)

	return r.outcome
}

func renderedOutcome() pipeline.Outcome {
	return pipeline.Outcome{
		State:   pipeline.StateRendered,
		Article: domain.Article{Title: "Council Approves Budget", Body: "body", URL: "https://example.com/a"},
		Result: domain.SummaryResult{
			SummaryText:       "The council approved the budget.",
			OriginalWordCount: 800,
			SummaryWordCount:  5,
			ElapsedSeconds:    1.23456,
		},
	}
}

func failedOutcome(kind pipeline.Kind, msg string) pipeline.Outcome {
	state := pipeline.StateError
	if kind == pipeline.KindEmptyInput {
		state = pipeline.StateIdle
	}

	return pipeline.Outcome{
		State: state,
		Err:   &pipeline.Error{Kind: kind, Err: errors.New(msg)},
	}
}

func newTestRouter(runner Runner) *gin.Engine {
	gin.SetMode(gin.TestMode)

	return SetupRouter(runner, Info{Backend: "huggingface", Model: "facebook/bart-large-cnn"}, slog.Default())
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&stubRunner{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "huggingface", body["backend"])
	assert.Equal(t, "facebook/bart-large-cnn", body["model"])
}

func TestIndexRendersForm(t *testing.T) {
	runner := &stubRunner{}
	r := newTestRouter(runner)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Summarize Article")
	assert.Contains(t, w.Body.String(), `name="url"`)
	assert.Contains(t, w.Body.String(), "facebook/bart-large-cnn")
	assert.Empty(t, runner.requests)
}

func postForm(r *gin.Engine, rawURL string) *httptest.ResponseRecorder {
	form := url.Values{"url": {rawURL}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestSubmitRendersSummary(t *testing.T) {
	runner := &stubRunner{outcome: renderedOutcome()}
	r := newTestRouter(runner)

	w := postForm(r, "https://example.com/a")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Title: Council Approves Budget")
	assert.Contains(t, body, "The council approved the budget.")
	assert.Contains(t, body, "Original Length: 800 words")
	assert.Contains(t, body, "Summary Length: 5 words")
	assert.Contains(t, body, "Processing Time: 1.23 seconds")

	require.Len(t, runner.requests, 1)
	assert.Equal(t, "https://example.com/a", runner.requests[0].URL)
}

func TestSubmitRendersWarning(t *testing.T) {
	r := newTestRouter(&stubRunner{outcome: failedOutcome(pipeline.KindEmptyInput, "URL is empty")})

	w := postForm(r, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="warning"`)
	assert.Contains(t, w.Body.String(), "Please enter a URL first.")
}

func TestSubmitRendersError(t *testing.T) {
	r := newTestRouter(&stubRunner{outcome: failedOutcome(pipeline.KindFetch, "unexpected status: 404")})

	w := postForm(r, "https://example.com/missing")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `class="error"`)
	assert.Contains(t, w.Body.String(), "Error: unexpected status: 404. Check if the URL is valid.")
}

func postJSON(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/summarize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func TestSummarizeAPI(t *testing.T) {
	r := newTestRouter(&stubRunner{outcome: renderedOutcome()})

	w := postJSON(r, `{"url":"https://example.com/a"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp summarizeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Council Approves Budget", resp.Title)
	assert.Equal(t, "The council approved the budget.", resp.Summary)
	assert.Equal(t, "https://example.com/a", resp.URL)
	assert.Equal(t, 800, resp.Metrics.OriginalWordCount)
	assert.Equal(t, 5, resp.Metrics.SummaryWordCount)
	assert.InDelta(t, 1.23, resp.Metrics.ElapsedSeconds, 1e-9)
}

func TestSummarizeAPIErrors(t *testing.T) {
	cases := []struct {
		kind   pipeline.Kind
		status int
	}{
		{pipeline.KindEmptyInput, http.StatusBadRequest},
		{pipeline.KindFetch, http.StatusUnprocessableEntity},
		{pipeline.KindModel, http.StatusBadGateway},
	}

	for _, tc := range cases {
		r := newTestRouter(&stubRunner{outcome: failedOutcome(tc.kind, "boom")})

		w := postJSON(r, `{"url":"https://example.com/a"}`)

		require.Equal(t, tc.status, w.Code, "kind %s", tc.kind)

		var resp errorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, string(tc.kind), resp.Error.Kind)
		assert.NotEmpty(t, resp.Error.Message)
	}
}

func TestSummarizeAPIInvalidBody(t *testing.T) {
	runner := &stubRunner{}
	r := newTestRouter(runner)

	w := postJSON(r, `{"url":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, runner.requests)
}
