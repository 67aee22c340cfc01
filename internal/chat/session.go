// Package chat keeps one conversation between a trainer and a customer up
// to date by polling, and translates it for display.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claude/coachdesk/internal/models"
	"github.com/claude/coachdesk/internal/translate"
	"github.com/google/uuid"
)

// DefaultPollInterval is how often a visible session fetches messages.
const DefaultPollInterval = 10 * time.Second

// ErrEmptyMessage is returned when sending blank text.
var ErrEmptyMessage = errors.New("message body is empty")

// MessageSource reads and writes a conversation.
type MessageSource interface {
	ListMessages(ctx context.Context, customerID uuid.UUID) ([]models.Message, error)
	SendMessage(ctx context.Context, customerID uuid.UUID, sender, body string) (*models.Message, error)
	SendReply(ctx context.Context, messageID uuid.UUID, sender, body string) (*models.Reply, error)
}

// Config describes the conversation a session shows.
type Config struct {
	CustomerID   uuid.UUID
	Sender       string
	Language     string
	PollInterval time.Duration

	// OnUpdate is called after a fetch has been applied.
	OnUpdate func()
}

// Entry is a message or reply ready for display.
type Entry struct {
	ID        string    `json:"id"`
	ReplyTo   string    `json:"reply_to,omitempty"`
	Sender    string    `json:"sender"`
	Body      string    `json:"body"`
	Display   string    `json:"display"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is the state of one open chat view. It owns its translation queue.
type Session struct {
	src     MessageSource
	queue   *translate.Queue
	log     *slog.Logger
	cfg     Config
	visible atomic.Bool
	wake    chan struct{}

	mu         sync.Mutex
	messages   []models.Message
	nextGen    uint64
	appliedGen uint64
}

// New creates a visible session. Queue options are passed through, and the
// queue's visibility follows the session's.
func New(src MessageSource, tr translate.Translator, log *slog.Logger, cfg Config, opts ...translate.Option) *Session {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	s := &Session{
		src:  src,
		log:  log,
		cfg:  cfg,
		wake: make(chan struct{}, 1),
	}
	s.visible.Store(true)

	opts = append(opts, translate.WithVisibility(s.visible.Load))
	s.queue = translate.NewQueue(tr, log, opts...)
	if cfg.Language != "" {
		s.queue.SetLanguage(cfg.Language, nil)
	}
	return s
}

// Run polls until ctx is cancelled. Polls are skipped while hidden.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	if s.visible.Load() {
		s.refreshLogged(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if s.visible.Load() {
				s.refreshLogged(ctx)
			}
		case <-s.wake:
			s.refreshLogged(ctx)
		}
	}
}

func (s *Session) refreshLogged(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn("chat poll failed", "customer", s.cfg.CustomerID, "error", err)
	}
}

// Refresh fetches the conversation once. A response is dropped if a fetch
// that started later has already been applied.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.nextGen++
	gen := s.nextGen
	s.mu.Unlock()

	msgs, err := s.src.ListMessages(ctx, s.cfg.CustomerID)
	if err != nil {
		return fmt.Errorf("listing messages: %w", err)
	}

	s.mu.Lock()
	if gen <= s.appliedGen {
		s.mu.Unlock()
		s.log.Debug("dropping stale chat poll", "generation", gen, "applied", s.appliedGen)
		return nil
	}
	s.appliedGen = gen
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].CreatedAt.Before(msgs[j].CreatedAt) })
	s.messages = msgs
	items := itemsNewestFirst(msgs)
	s.mu.Unlock()

	for _, it := range items {
		s.queue.Enqueue(it.ID, it.Text)
	}
	if s.cfg.OnUpdate != nil {
		s.cfg.OnUpdate()
	}
	return nil
}

// SetVisible records whether the view is in the foreground. Becoming visible
// triggers an immediate poll and resumes translation.
func (s *Session) SetVisible(v bool) {
	was := s.visible.Swap(v)
	if v && !was {
		select {
		case s.wake <- struct{}{}:
		default:
		}
		s.queue.Resume()
	}
}

// SetLanguage changes the display language and re-translates every loaded
// message and reply, newest first. An empty language shows source text.
func (s *Session) SetLanguage(lang string) {
	s.mu.Lock()
	items := itemsNewestFirst(s.messages)
	s.mu.Unlock()
	s.queue.SetLanguage(lang, items)
}

// Language returns the display language.
func (s *Session) Language() string {
	return s.queue.Language()
}

// Send posts a new message and refreshes the conversation.
func (s *Session) Send(ctx context.Context, body string) (*models.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	m, err := s.src.SendMessage(ctx, s.cfg.CustomerID, s.cfg.Sender, body)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("refresh after send failed", "error", err)
	}
	return m, nil
}

// Reply answers a message and refreshes the conversation.
func (s *Session) Reply(ctx context.Context, messageID uuid.UUID, body string) (*models.Reply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, ErrEmptyMessage
	}
	r, err := s.src.SendReply(ctx, messageID, s.cfg.Sender, body)
	if err != nil {
		return nil, fmt.Errorf("sending reply: %w", err)
	}
	if err := s.Refresh(ctx); err != nil {
		s.log.Warn("refresh after reply failed", "error", err)
	}
	return r, nil
}

// Messages returns the last applied fetch, oldest first.
func (s *Session) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.messages)
}

// Entries returns the conversation in chronological order, each message
// followed by its replies, with translated display text where available.
func (s *Session) Entries() []Entry {
	s.mu.Lock()
	msgs := s.messages
	s.mu.Unlock()

	var out []Entry
	for _, m := range msgs {
		id := m.ID.String()
		out = append(out, Entry{
			ID:        id,
			Sender:    m.Sender,
			Body:      m.Body,
			Display:   s.queue.Display(id, m.Body),
			CreatedAt: m.CreatedAt,
		})
		for _, r := range m.Replies {
			out = append(out, Entry{
				ID:        r.ID.String(),
				ReplyTo:   id,
				Sender:    r.Sender,
				Body:      r.Body,
				Display:   s.queue.Display(translate.ReplyID(r.ID.String()), r.Body),
				CreatedAt: r.CreatedAt,
			})
		}
	}
	return out
}

// Close stops translation work. Run must be stopped through its context.
func (s *Session) Close() {
	s.queue.Close()
}

type timedItem struct {
	at   time.Time
	item translate.Item
}

// itemsNewestFirst flattens messages and replies into queue items ordered by
// creation time, newest first.
func itemsNewestFirst(msgs []models.Message) []translate.Item {
	var all []timedItem
	for _, m := range msgs {
		all = append(all, timedItem{m.CreatedAt, translate.Item{ID: m.ID.String(), Text: m.Body}})
		for _, r := range m.Replies {
			all = append(all, timedItem{r.CreatedAt, translate.Item{ID: translate.ReplyID(r.ID.String()), Text: r.Body}})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].at.After(all[j].at) })

	items := make([]translate.Item, len(all))
	for i, t := range all {
		items[i] = t.item
	}
	return items
}
