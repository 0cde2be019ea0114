package article

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"newsbrief/internal/domain"

	"github.com/mmcdole/gofeed"
	"mvdan.cc/xurls/v2"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/127.0.0.0 Safari/537.36"
	acceptHeader = "text/html,application/xhtml+xml,application/xml;q=0.9," +
		"application/rss+xml;q=0.8,application/atom+xml;q=0.8,*/*;q=0.5"

	maxRedirects = 10
)

var supportedContentTypes = []string{
	"text/html",
	"application/xhtml",
	"xml",
	"rss",
	"atom",
	"json",
}

type Fetcher struct {
	client       *http.Client
	feedParser   *gofeed.Parser
	urlRe        *regexp.Regexp
	maxPageBytes int64
	log          *slog.Logger
}

type Option func(*Fetcher)

// WithHTTPClient replaces the default client; its timeout is kept as is.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

func NewFetcher(
	timeout time.Duration,
	maxPageBytes int64,
	log *slog.Logger,
	opts ...Option,
) (*Fetcher, error) {
	urlRe, err := xurls.StrictMatchingScheme(`https?://`)
	if err != nil {
		return nil, fmt.Errorf("create regexp: %w", err)
	}

	f := &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("too many redirects")
				}
				return nil
			},
		},
		feedParser:   gofeed.NewParser(),
		urlRe:        urlRe,
		maxPageBytes: maxPageBytes,
		log:          log,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

// Fetch downloads the page behind raw and extracts its article. When the page
// is a feed, the newest linked item is fetched instead.
func (f *Fetcher) Fetch(ctx context.Context, raw string) (domain.Article, error) {
	pageURL, err := f.ResolveURL(raw)
	if err != nil {
		return domain.Article{}, fetchError(ReasonInvalidURL, strings.TrimSpace(raw), err)
	}

	page, err := f.download(ctx, pageURL)
	if err != nil {
		return domain.Article{}, err
	}

	if gofeed.DetectFeedType(bytes.NewReader(page.body)) != gofeed.FeedTypeUnknown {
		itemURL, feedErr := f.newestItemURL(page)
		if feedErr != nil {
			return domain.Article{}, fetchError(ReasonNoContent, page.url.String(), feedErr)
		}

		f.log.InfoContext(ctx, "Feed is resolved to newest item",
			"feedURL", page.url.String(),
			"itemURL", itemURL.String())

		page, err = f.download(ctx, itemURL)
		if err != nil {
			return domain.Article{}, err
		}

		if gofeed.DetectFeedType(bytes.NewReader(page.body)) != gofeed.FeedTypeUnknown {
			return domain.Article{}, fetchError(ReasonNoContent, page.url.String(),
				errors.New("feed item links to another feed"))
		}
	}

	art, err := f.extract(ctx, page)
	if err != nil {
		return domain.Article{}, err
	}

	f.log.InfoContext(ctx, "Article is fetched",
		"url", art.URL,
		"title", art.Title,
		"wordCount", domain.WordCount(art.Body))

	return art, nil
}

// ResolveURL picks the first http(s) URL out of raw.
func (f *Fetcher) ResolveURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("URL is empty")
	}

	found := f.urlRe.FindString(raw)
	if found == "" {
		return nil, fmt.Errorf("no http(s) URL in %q", raw)
	}

	u, err := url.Parse(found)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("URL has no host: %q", found)
	}

	return u, nil
}

type page struct {
	url         *url.URL
	contentType string
	body        []byte
}

func (f *Fetcher) download(ctx context.Context, pageURL *url.URL) (page, error) {
	rawURL := pageURL.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return page{}, fetchError(ReasonInvalidURL, rawURL, fmt.Errorf("create request: %w", err))
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.9")

	resp, err := f.client.Do(req) //nolint:gosec // User supplied URL is the whole point.
	if err != nil {
		return page{}, fetchError(ReasonUnreachable, rawURL, fmt.Errorf("do request: %w", err))
	}
	defer func() {
		if err = resp.Body.Close(); err != nil {
			f.log.ErrorContext(ctx, "Failed to close response body",
				"error", err,
				"url", rawURL,
				"operation", "download")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return page{}, fetchError(ReasonUnreachable, rawURL,
			fmt.Errorf("do request: unexpected status: %d", resp.StatusCode))
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !isSupportedContentType(contentType) {
		return page{}, fetchError(ReasonNoContent, rawURL,
			fmt.Errorf("unsupported content type: %s", contentType))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxPageBytes+1))
	if err != nil {
		return page{}, fetchError(ReasonUnreachable, rawURL, fmt.Errorf("read body: %w", err))
	}

	if int64(len(body)) > f.maxPageBytes {
		return page{}, fetchError(ReasonUnreachable, rawURL,
			fmt.Errorf("page exceeds size limit of %d bytes", f.maxPageBytes))
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL
	}

	return page{url: finalURL, contentType: contentType, body: body}, nil
}

func isSupportedContentType(contentType string) bool {
	// Some servers omit the header; the body is sniffed later.
	if contentType == "" {
		return true
	}

	for _, supported := range supportedContentTypes {
		if strings.Contains(contentType, supported) {
			return true
		}
	}

	return false
}
