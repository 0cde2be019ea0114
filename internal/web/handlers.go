package web

import (
	"math"
	"net/http"

	"newsbrief/internal/domain"
	"newsbrief/internal/pipeline"
	"newsbrief/internal/presenter"

	"github.com/gin-gonic/gin"
)

type handlers struct {
	runner Runner
	info   Info
}

type pageData struct {
	Backend string
	Model   string
	URL     string
	View    *presenter.View
}

type summarizeRequest struct {
	URL string `json:"url"`
}

type metricsResponse struct {
	OriginalWordCount int     `json:"original_word_count"`
	SummaryWordCount  int     `json:"summary_word_count"`
	ElapsedSeconds    float64 `json:"elapsed_seconds"`
}

type summarizeResponse struct {
	Title   string          `json:"title"`
	Summary string          `json:"summary"`
	URL     string          `json:"url"`
	Metrics metricsResponse `json:"metrics"`
}

type errorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// GET /
func (h *handlers) index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", pageData{
		Backend: h.info.Backend,
		Model:   h.info.Model,
	})
}

// POST /
func (h *handlers) submit(c *gin.Context) {
	rawURL := c.PostForm("url")

	view := presenter.Render(h.runner.Run(c.Request.Context(), domain.ArticleRequest{URL: rawURL}))

	c.HTML(http.StatusOK, "index.html", pageData{
		Backend: h.info.Backend,
		Model:   h.info.Model,
		URL:     rawURL,
		View:    &view,
	})
}

// POST /api/summarize
func (h *handlers) summarize(c *gin.Context) {
	var req summarizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: errorBody{
			Kind:    "bad_request",
			Message: "invalid JSON body",
		}})
		return
	}

	out := h.runner.Run(c.Request.Context(), domain.ArticleRequest{URL: req.URL})
	if out.Err != nil {
		c.JSON(statusForKind(out.Err.Kind), errorResponse{Error: errorBody{
			Kind:    string(out.Err.Kind),
			Message: presenter.Render(out).Message,
		}})
		return
	}

	c.JSON(http.StatusOK, summarizeResponse{
		Title:   out.Article.Title,
		Summary: out.Result.SummaryText,
		URL:     out.Article.URL,
		Metrics: metricsResponse{
			OriginalWordCount: out.Result.OriginalWordCount,
			SummaryWordCount:  out.Result.SummaryWordCount,
			ElapsedSeconds:    math.Round(out.Result.ElapsedSeconds*100) / 100,
		},
	})
}

// GET /health
func (h *handlers) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"backend": h.info.Backend,
		"model":   h.info.Model,
	})
}

func statusForKind(kind pipeline.Kind) int {
	switch kind {
	case pipeline.KindEmptyInput:
		return http.StatusBadRequest
	case pipeline.KindFetch:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}
