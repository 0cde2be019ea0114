package article

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"newsbrief/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

const fallbackContentSelector = "article p, main p"

func (f *Fetcher) extract(ctx context.Context, p page) (domain.Article, error) {
	rawURL := p.url.String()

	var title, body string

	parsed, err := readability.FromReader(bytes.NewReader(p.body), p.url)
	if err != nil {
		f.log.WarnContext(ctx, "Readability failed so fallback extraction will be used",
			"error", err,
			"url", rawURL,
			"contentType", p.contentType)
	} else {
		title = strings.TrimSpace(parsed.Title)
		body = NormalizeText(parsed.TextContent)
	}

	if title == "" || body == "" {
		doc, docErr := goquery.NewDocumentFromReader(bytes.NewReader(p.body))
		if docErr != nil {
			return domain.Article{}, fetchError(ReasonNoContent, rawURL, docErr)
		}

		if title == "" {
			title = documentTitle(doc)
		}

		if body == "" {
			f.log.WarnContext(ctx, "Empty readability text so paragraphs will be used",
				"url", rawURL)

			body = documentParagraphs(doc)
		}
	}

	if body == "" {
		return domain.Article{}, fetchError(ReasonNoContent, rawURL, errors.New("no article text found"))
	}

	if title == "" {
		title = rawURL
	}

	return domain.Article{Title: title, Body: body, URL: rawURL}, nil
}

func documentTitle(doc *goquery.Document) string {
	if content, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}

	return strings.TrimSpace(doc.Find("title").First().Text())
}

func documentParagraphs(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, aside, footer, header, iframe").Remove()

	selection := doc.Find(fallbackContentSelector)
	if selection.Length() == 0 {
		selection = doc.Find("body p")
	}

	var b strings.Builder
	selection.Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if text == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	})

	return NormalizeText(b.String())
}

// NormalizeText collapses whitespace inside lines and keeps at most one blank
// line between paragraphs.
func NormalizeText(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var b strings.Builder
	blank := false

	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank = b.Len() > 0
			continue
		}

		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(line)
		blank = false
	}

	return b.String()
}
