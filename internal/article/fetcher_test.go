package article_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"newsbrief/internal/article"
)

const paragraph = "The city council approved the new transit budget on Tuesday after a long debate " +
	"about bus lanes, fares and the maintenance backlog that has delayed service for years."

func articleHTML(title string, paragraphs int) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html><html><head><title>")
	b.WriteString(title)
	b.WriteString("</title></head><body><nav>Home | World | Sport</nav><article><h1>")
	b.WriteString(title)
	b.WriteString("</h1>")
	for i := range paragraphs {
		fmt.Fprintf(&b, "<p>%s Paragraph %d.</p>", paragraph, i)
	}
	b.WriteString("</article><footer>Copyright</footer></body></html>")

	return b.String()
}

func newFetcher(t *testing.T, maxPageBytes int64) *article.Fetcher {
	t.Helper()

	f, err := article.NewFetcher(5*time.Second, maxPageBytes, slog.Default())
	if err != nil {
		t.Fatalf("failed to create fetcher: %v", err)
	}

	return f
}

func requireReason(t *testing.T, err error, want article.Reason) {
	t.Helper()

	var fetchErr *article.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %T: %v", err, err)
	}

	if fetchErr.Reason != want {
		t.Fatalf("unexpected reason: got %q want %q (%v)", fetchErr.Reason, want, err)
	}
}

func TestFetchExtractsArticle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML("Council Approves Transit Budget", 6)))
	}))
	defer server.Close()

	got, err := newFetcher(t, 1<<20).Fetch(context.Background(), "  "+server.URL+"/news/1  ")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if !strings.Contains(got.Title, "Council Approves Transit Budget") {
		t.Fatalf("unexpected title: %q", got.Title)
	}

	if !strings.Contains(got.Body, "maintenance backlog") {
		t.Fatalf("expected article text in body, got: %q", got.Body)
	}

	if strings.Contains(got.Body, "Copyright") {
		t.Fatalf("expected footer to be stripped, got: %q", got.Body)
	}

	if got.URL != server.URL+"/news/1" {
		t.Fatalf("unexpected URL: %q", got.URL)
	}
}

func TestFetchFindsURLInsideText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML("Inline", 4)))
	}))
	defer server.Close()

	got, err := newFetcher(t, 1<<20).Fetch(context.Background(), "please read "+server.URL+"/a thanks")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if got.URL != server.URL+"/a" {
		t.Fatalf("unexpected URL: %q", got.URL)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	f := newFetcher(t, 1<<20)

	for _, raw := range []string{"not a url", "ftp://example.com/file", "   "} {
		_, err := f.Fetch(context.Background(), raw)
		requireReason(t, err, article.ReasonInvalidURL)
	}
}

func TestFetchUnexpectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newFetcher(t, 1<<20).Fetch(context.Background(), server.URL)
	requireReason(t, err, article.ReasonUnreachable)

	if !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected status in error, got: %v", err)
	}
}

func TestFetchUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	unreachable := server.URL
	server.Close()

	_, err := newFetcher(t, 1<<20).Fetch(context.Background(), unreachable)
	requireReason(t, err, article.ReasonUnreachable)
}

func TestFetchUnsupportedContentType(t *testing.T) {
	cases := map[string][]byte{
		"image/png":                 {0x89, 0x50, 0x4e, 0x47},
		"text/plain; charset=utf-8": []byte("Plain text is not an article page."),
	}

	for contentType, body := range cases {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", contentType)
			_, _ = w.Write(body)
		}))

		_, err := newFetcher(t, 1<<20).Fetch(context.Background(), server.URL)
		server.Close()

		requireReason(t, err, article.ReasonNoContent)
	}
}

func TestFetchPageTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML("Big", 50)))
	}))
	defer server.Close()

	_, err := newFetcher(t, 512).Fetch(context.Background(), server.URL)
	requireReason(t, err, article.ReasonUnreachable)
}

func TestFetchPageWithoutText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Empty</title></head><body></body></html>`))
	}))
	defer server.Close()

	_, err := newFetcher(t, 1<<20).Fetch(context.Background(), server.URL)
	requireReason(t, err, article.ReasonNoContent)
}

func TestFetchResolvesFeedToNewestItem(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?>
<rss version="2.0"><channel><title>News</title><link>%[1]s</link>
<item><title>Old</title><link>%[1]s/old</link><pubDate>Mon, 06 Jan 2025 10:00:00 GMT</pubDate></item>
<item><title>New</title><link>/new</link><pubDate>Tue, 07 Jan 2025 10:00:00 GMT</pubDate></item>
</channel></rss>`, server.URL)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML("Newest Story", 5)))
	})
	mux.HandleFunc("/old", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML("Old Story", 5)))
	})

	got, err := newFetcher(t, 1<<20).Fetch(context.Background(), server.URL+"/feed.xml")
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}

	if got.URL != server.URL+"/new" {
		t.Fatalf("expected newest item URL, got %q", got.URL)
	}

	if !strings.Contains(got.Title, "Newest Story") {
		t.Fatalf("unexpected title: %q", got.Title)
	}
}

func TestFetchFeedWithoutItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(`<?xml version="1.0"?><rss version="2.0"><channel><title>Empty</title></channel></rss>`))
	}))
	defer server.Close()

	_, err := newFetcher(t, 1<<20).Fetch(context.Background(), server.URL)
	requireReason(t, err, article.ReasonNoContent)
}

func TestNormalizeText(t *testing.T) {
	got := article.NormalizeText("  First   line \r\n\n\n\n second\tline\n third  ")
	want := "First line\n\nsecond line\nthird"

	if got != want {
		t.Fatalf("unexpected normalized text: %q", got)
	}
}
