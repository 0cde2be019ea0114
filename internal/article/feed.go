package article

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

func (f *Fetcher) newestItemURL(p page) (*url.URL, error) {
	parsed, err := f.feedParser.Parse(bytes.NewReader(p.body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	item := newestItem(parsed.Items)
	if item == nil {
		return nil, errors.New("feed has no linked items")
	}

	link, err := url.Parse(strings.TrimSpace(item.Link))
	if err != nil {
		return nil, fmt.Errorf("parse item link: %w", err)
	}

	resolved := p.url.ResolveReference(link)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return nil, fmt.Errorf("unsupported item link scheme: %q", resolved.Scheme)
	}

	return resolved, nil
}

// newestItem prefers the latest published item; feeds without dates keep
// their document order, so the first linked item wins.
func newestItem(items []*gofeed.Item) *gofeed.Item {
	var (
		newest     *gofeed.Item
		newestTime time.Time
	)

	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}

		published := itemTime(item)
		if newest == nil || published.After(newestTime) {
			newest = item
			newestTime = published
		}
	}

	return newest
}

func itemTime(item *gofeed.Item) time.Time {
	switch {
	case item.PublishedParsed != nil:
		return *item.PublishedParsed
	case item.UpdatedParsed != nil:
		return *item.UpdatedParsed
	default:
		return time.Time{}
	}
}
