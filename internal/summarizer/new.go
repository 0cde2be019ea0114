package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"newsbrief/internal/config"

	"github.com/openai/openai-go/v3/option"
)

type warmer interface {
	Warmup(ctx context.Context) error
}

// Handle is the process-wide summarizer. It is built once at startup and
// shared read-only by every request.
type Handle struct {
	Summarizer

	Backend string
	Model   string

	warmer warmer
}

// New builds the configured backend and wraps it with the overlong-input
// policy and the summary cache.
func New(cfg config.Config, log *slog.Logger) (*Handle, error) {
	var backend Summarizer

	switch cfg.Backend {
	case config.BackendHuggingFace:
		hf, err := NewHuggingFaceSummarizer(
			cfg.HFBaseURL,
			cfg.HFModel,
			cfg.HFAPIToken,
			cfg.SummarizeTimeout,
			log,
		)
		if err != nil {
			return nil, fmt.Errorf("create huggingface summarizer: %w", err)
		}
		backend = hf
	case config.BackendOpenAI:
		var opts []option.RequestOption
		if cfg.OpenAIBaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.OpenAIBaseURL))
		}

		oa, err := NewOpenAISummarizer(cfg.OpenAIAPIKey, cfg.OpenAIModel, opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai summarizer: %w", err)
		}
		backend = oa
	case config.BackendLead:
		backend = NewLeadSummarizer()
	default:
		return nil, fmt.Errorf("unknown summarizer backend: %q", cfg.Backend)
	}

	h := &Handle{
		Backend: cfg.Backend,
		Model:   cfg.Model(),
	}
	if w, ok := backend.(warmer); ok {
		h.warmer = w
	}

	guarded := NewLengthGuard(backend, cfg.Backend, cfg.OverlongPolicy, cfg.MaxInputWords, log)
	h.Summarizer = NewCachedSummarizer(
		guarded,
		cfg.Backend+"|"+cfg.Model(),
		cfg.SummaryCacheSize,
		cfg.SummaryCacheTTL,
		log,
	)

	return h, nil
}

// Warmup loads remote models ahead of the first request. Backends that need
// no warmup return nil.
func (h *Handle) Warmup(ctx context.Context) error {
	if h.warmer == nil {
		return nil
	}

	if err := h.warmer.Warmup(ctx); err != nil {
		return fmt.Errorf("warm up %s: %w", h.Backend, err)
	}

	return nil
}
