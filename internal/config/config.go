package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendLead        = "lead"

	PolicyTruncate = "truncate"
	PolicyReject   = "reject"
	PolicyChunk    = "chunk"
)

type Config struct {
	Addr     string     `env:"ADDR"      envDefault:":8080"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	Backend        string `env:"SUMMARIZER_BACKEND" envDefault:"huggingface"`
	HFAPIToken     string `env:"HF_API_TOKEN"`
	HFBaseURL      string `env:"HF_BASE_URL"        envDefault:"https://router.huggingface.co/hf-inference/models"`
	HFModel        string `env:"HF_MODEL"           envDefault:"facebook/bart-large-cnn"`
	OpenAIAPIKey   string `env:"OPENAI_API_KEY"`
	OpenAIModel    string `env:"OPENAI_MODEL"       envDefault:"gpt-4o-mini"`
	OpenAIBaseURL  string `env:"OPENAI_BASE_URL"`
	MinLength      int    `env:"SUMMARY_MIN_LENGTH" envDefault:"30"`
	MaxLength      int    `env:"SUMMARY_MAX_LENGTH" envDefault:"130"`
	MaxInputWords  int    `env:"MAX_INPUT_WORDS"    envDefault:"700"`
	OverlongPolicy string `env:"OVERLONG_POLICY"    envDefault:"truncate"`

	FetchTimeout     time.Duration `env:"FETCH_TIMEOUT"     envDefault:"20s"`
	SummarizeTimeout time.Duration `env:"SUMMARIZE_TIMEOUT" envDefault:"90s"`
	RequestTimeout   time.Duration `env:"REQUEST_TIMEOUT"   envDefault:"120s"`
	MaxPageBytes     int64         `env:"MAX_PAGE_BYTES"    envDefault:"5242880"`

	SummaryCacheSize int           `env:"SUMMARY_CACHE_SIZE" envDefault:"256"`
	SummaryCacheTTL  time.Duration `env:"SUMMARY_CACHE_TTL"  envDefault:"1h"`

	TelegramToken string  `env:"TELEGRAM_TOKEN"`
	AllowedUsers  []int64 `env:"ALLOWED_USERS"`
}

// Load reads an optional .env file and then parses the environment.
func Load(dotenvPaths ...string) (Config, error) {
	if err := godotenv.Load(dotenvPaths...); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Backend = strings.ToLower(strings.TrimSpace(cfg.Backend))
	cfg.OverlongPolicy = strings.ToLower(strings.TrimSpace(cfg.OverlongPolicy))
	cfg.HFAPIToken = strings.TrimSpace(cfg.HFAPIToken)
	cfg.OpenAIAPIKey = strings.TrimSpace(cfg.OpenAIAPIKey)
	cfg.TelegramToken = strings.TrimSpace(cfg.TelegramToken)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error

	switch c.Backend {
	case BackendHuggingFace:
		if strings.TrimSpace(c.HFModel) == "" {
			errs = append(errs, errors.New("HF_MODEL is required for huggingface backend"))
		}
		if c.HFAPIToken == "" && hostedHuggingFace(c.HFBaseURL) {
			errs = append(errs, errors.New("HF_API_TOKEN is required for the hosted huggingface endpoint"))
		}
	case BackendOpenAI:
		if c.OpenAIAPIKey == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for openai backend"))
		}
	case BackendLead:
	default:
		errs = append(errs, fmt.Errorf("unknown SUMMARIZER_BACKEND %q", c.Backend))
	}

	switch c.OverlongPolicy {
	case PolicyTruncate, PolicyReject, PolicyChunk:
	default:
		errs = append(errs, fmt.Errorf("unknown OVERLONG_POLICY %q", c.OverlongPolicy))
	}

	if c.MinLength <= 0 || c.MaxLength <= 0 {
		errs = append(errs, errors.New("summary lengths must be positive"))
	}
	if c.MinLength > c.MaxLength {
		errs = append(errs, fmt.Errorf(
			"SUMMARY_MIN_LENGTH (%d) exceeds SUMMARY_MAX_LENGTH (%d)", c.MinLength, c.MaxLength))
	}
	if c.MaxInputWords <= c.MaxLength {
		errs = append(errs, fmt.Errorf(
			"MAX_INPUT_WORDS (%d) must exceed SUMMARY_MAX_LENGTH (%d)", c.MaxInputWords, c.MaxLength))
	}
	if c.FetchTimeout <= 0 || c.SummarizeTimeout <= 0 || c.RequestTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	if c.MaxPageBytes <= 0 {
		errs = append(errs, errors.New("MAX_PAGE_BYTES must be positive"))
	}

	return errors.Join(errs...)
}

// Model returns the model identifier of the configured backend.
func (c Config) Model() string {
	switch c.Backend {
	case BackendHuggingFace:
		return c.HFModel
	case BackendOpenAI:
		return c.OpenAIModel
	default:
		return BackendLead
	}
}

// hostedHuggingFace reports whether baseURL points at Hugging Face itself,
// which rejects anonymous inference requests. Self-hosted endpoints may not.
func hostedHuggingFace(baseURL string) bool {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return true
	}

	host := strings.ToLower(u.Hostname())

	return host == "huggingface.co" || strings.HasSuffix(host, ".huggingface.co")
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
