package web

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"time"

	"newsbrief/internal/domain"
	"newsbrief/internal/pipeline"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Runner executes one summarize request.
type Runner interface {
	Run(ctx context.Context, req domain.ArticleRequest) pipeline.Outcome
}

// Info describes the configured summarizer for display.
type Info struct {
	Backend string
	Model   string
}

func SetupRouter(runner Runner, info Info, log *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log))

	r.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	h := &handlers{runner: runner, info: info}

	r.GET("/", h.index)
	r.POST("/", h.submit)
	r.GET("/health", h.health)

	api := r.Group("/api")
	{
		api.POST("/summarize", h.summarize)
	}

	return r
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.InfoContext(c.Request.Context(), "Request is served",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
