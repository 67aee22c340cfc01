package translate

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"
)

// Cached puts a bounded LRU and a request throttle in front of a provider.
// Unlike Cache it is shared by every request the server handles.
type Cached struct {
	next    Translator
	cache   *lru.Cache[string, string]
	limiter *rate.Limiter
}

// NewCached wraps next. A non-positive requestsPerSecond disables throttling.
func NewCached(next Translator, size int, requestsPerSecond float64) (*Cached, error) {
	if size <= 0 {
		size = 1024
	}
	c, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("creating translation cache: %w", err)
	}
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Cached{next: next, cache: c, limiter: rate.NewLimiter(limit, 1)}, nil
}

// Translate implements Translator.
func (c *Cached) Translate(ctx context.Context, text, targetLang string) (string, error) {
	key := targetLang + "\x00" + text
	if v, ok := c.cache.Get(key); ok {
		return v, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for translation slot: %w", err)
	}
	v, err := c.next.Translate(ctx, text, targetLang)
	if err != nil {
		return "", err
	}
	c.cache.Add(key, v)
	return v, nil
}

// Len returns the number of cached translations.
func (c *Cached) Len() int {
	return c.cache.Len()
}
