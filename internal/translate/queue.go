// Package translate translates chat text for display through a single,
// rate-limited worker per chat view.
package translate

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

const (
	// DefaultDelay is the pause between two provider calls within one drain.
	DefaultDelay = 500 * time.Millisecond

	// DefaultMinLength is the shortest text (in runes, trimmed) worth translating.
	DefaultMinLength = 2
)

// Translator translates text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// Item is a queued translation request.
type Item struct {
	ID   string
	Text string
}

// Option configures a Queue.
type Option func(*Queue)

// WithDelay sets the pause between provider calls.
func WithDelay(d time.Duration) Option {
	return func(q *Queue) { q.delay = d }
}

// WithMinLength sets the minimum text length.
func WithMinLength(n int) Option {
	return func(q *Queue) { q.minLen = n }
}

// WithVisibility installs the check the worker consults before each entry.
// While it reports false the worker stops and entries stay pending.
func WithVisibility(visible func() bool) Option {
	return func(q *Queue) { q.visible = visible }
}

// Queue serializes translation requests for one chat view. At most one
// provider call is outstanding at any time and each identity is translated
// at most once per language.
type Queue struct {
	translator Translator
	log        *slog.Logger
	delay      time.Duration
	minLen     int
	visible    func() bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	lang     string
	gen      uint64
	pending  []Item
	queued   map[string]struct{}
	inFlight map[string]struct{}
	draining bool
	closed   bool
	cache    *Cache
}

// NewQueue creates an idle queue with no target language.
func NewQueue(t Translator, log *slog.Logger, opts ...Option) *Queue {
	ctx, cancel := context.WithCancel(context.Background())
	q := &Queue{
		translator: t,
		log:        log,
		delay:      DefaultDelay,
		minLen:     DefaultMinLength,
		ctx:        ctx,
		cancel:     cancel,
		queued:     make(map[string]struct{}),
		inFlight:   make(map[string]struct{}),
		cache:      NewCache(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue schedules text for translation under the given identity. It is a
// no-op when no language is set, the identity is cached, pending or in
// flight, or the text is too short.
func (q *Queue) Enqueue(id, text string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.enqueueLocked(id, text)
}

func (q *Queue) enqueueLocked(id, text string) {
	if q.closed || q.lang == "" {
		return
	}
	if _, ok := q.cache.Lookup(id); ok {
		return
	}
	if _, ok := q.inFlight[id]; ok {
		return
	}
	if utf8.RuneCountInString(strings.TrimSpace(text)) < q.minLen {
		return
	}
	if _, ok := q.queued[id]; ok {
		return
	}
	q.pending = append(q.pending, Item{ID: id, Text: text})
	q.queued[id] = struct{}{}
	q.startLocked()
}

// SetLanguage switches the target language. All cached translations, pending
// entries and in-flight markers are dropped, then items are enqueued in the
// order given. Callers pass the newest messages first.
func (q *Queue) SetLanguage(lang string, items []Item) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.lang = lang
	q.gen++
	q.cache.Clear()
	clear(q.inFlight)
	clear(q.queued)
	q.pending = nil

	for _, it := range items {
		q.enqueueLocked(it.ID, it.Text)
	}
}

// Language returns the current target language.
func (q *Queue) Language() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lang
}

// Lookup returns the cached translation for an identity.
func (q *Queue) Lookup(id string) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cache.Lookup(id)
}

// Display returns the translation for an identity, or source when there is none.
func (q *Queue) Display(id, source string) string {
	if t, ok := q.Lookup(id); ok {
		return t
	}
	return source
}

// Resume restarts draining after the view becomes visible again.
func (q *Queue) Resume() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.startLocked()
}

// Draining reports whether a worker is currently processing entries.
func (q *Queue) Draining() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

// Pending returns the number of entries waiting for the worker.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close cancels any in-flight call and waits for the worker to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.pending = nil
	clear(q.queued)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()
}

func (q *Queue) isVisible() bool {
	return q.visible == nil || q.visible()
}

func (q *Queue) startLocked() {
	if q.draining || q.closed || len(q.pending) == 0 || !q.isVisible() {
		return
	}
	q.draining = true
	q.wg.Add(1)
	go q.drain()
}

// drain is the single worker loop. It owns the Draining state until it returns.
func (q *Queue) drain() {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		if q.closed || len(q.pending) == 0 || !q.isVisible() {
			q.draining = false
			q.mu.Unlock()
			return
		}

		it := q.pending[0]
		q.pending = q.pending[1:]
		delete(q.queued, it.ID)

		if _, ok := q.cache.Lookup(it.ID); ok {
			q.mu.Unlock()
			continue
		}
		if _, ok := q.inFlight[it.ID]; ok {
			q.mu.Unlock()
			continue
		}
		q.inFlight[it.ID] = struct{}{}
		lang, gen := q.lang, q.gen
		q.mu.Unlock()

		translated, err := q.translator.Translate(q.ctx, it.Text, lang)

		q.mu.Lock()
		delete(q.inFlight, it.ID)
		stale := gen != q.gen
		if err == nil && !stale && translated != "" && translated != it.Text {
			q.cache.Store(it.ID, translated)
		}
		more := len(q.pending) > 0
		q.mu.Unlock()

		if err != nil && q.ctx.Err() == nil {
			q.log.Warn("translation failed", "id", it.ID, "lang", lang, "error", err)
		}

		if more && !q.wait() {
			q.mu.Lock()
			q.draining = false
			q.mu.Unlock()
			return
		}
	}
}

// wait sleeps for the configured delay. It returns false if the queue was closed.
func (q *Queue) wait() bool {
	if q.delay <= 0 {
		return q.ctx.Err() == nil
	}
	t := time.NewTimer(q.delay)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-q.ctx.Done():
		return false
	}
}
