package summarizer

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

type summaryCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type summaryCacheEntry struct {
	key       string
	summary   string
	expiresAt time.Time
}

func newSummaryCache(maxEntries int) *summaryCache {
	if maxEntries <= 0 {
		return nil
	}

	return &summaryCache{
		entries:    make(map[string]*list.Element, maxEntries),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *summaryCache) get(key string, now time.Time) (string, bool) {
	if c == nil || key == "" {
		return "", false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return "", false
	}

	entry := elem.Value.(*summaryCacheEntry)
	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return "", false
	}

	c.order.MoveToFront(elem)

	return entry.summary, true
}

func (c *summaryCache) set(
	key string,
	summary string,
	expiresAt time.Time,
	now time.Time,
) {
	if c == nil || key == "" || summary == "" || !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*summaryCacheEntry)
		entry.summary = summary
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&summaryCacheEntry{
		key:       key,
		summary:   summary,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()
}

func (c *summaryCache) len() int {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func (c *summaryCache) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*summaryCacheEntry).expiresAt) {
			c.removeElement(elem)
		}
		elem = prev
	}
}

func (c *summaryCache) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *summaryCache) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*summaryCacheEntry).key)
	c.order.Remove(elem)
}

// CachedSummarizer returns the stored summary for text it has already
// summarised with the same bounds, so repeated requests stay identical.
type CachedSummarizer struct {
	next      Summarizer
	cache     *summaryCache
	namespace string
	ttl       time.Duration
	now       func() time.Time
	log       *slog.Logger
}

// NewCachedSummarizer wraps next with an LRU cache. A non-positive size or
// TTL disables caching and returns next unchanged.
func NewCachedSummarizer(
	next Summarizer,
	namespace string,
	maxEntries int,
	ttl time.Duration,
	log *slog.Logger,
) Summarizer {
	cache := newSummaryCache(maxEntries)
	if cache == nil || ttl <= 0 {
		return next
	}

	return &CachedSummarizer{
		next:      next,
		cache:     cache,
		namespace: namespace,
		ttl:       ttl,
		now:       time.Now,
		log:       log,
	}
}

func (s *CachedSummarizer) Summarize(ctx context.Context, input Input) (string, error) {
	key := s.cacheKey(input)
	now := s.now().UTC()

	if summary, ok := s.cache.get(key, now); ok {
		s.log.DebugContext(ctx, "Summary cache hit",
			"cacheKey", key,
			"url", input.SourceURL)

		return summary, nil
	}

	summary, err := s.next.Summarize(ctx, input)
	if err != nil {
		return "", err
	}

	s.cache.set(key, summary, now.Add(s.ttl), now)

	return summary, nil
}

func (s *CachedSummarizer) cacheKey(input Input) string {
	normalizedText := strings.TrimSpace(input.Text)
	if normalizedText == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(normalizedText))

	return s.namespace +
		"|" + strconv.Itoa(input.MinLength) +
		"|" + strconv.Itoa(input.MaxLength) +
		"|" + hex.EncodeToString(hash[:])
}
