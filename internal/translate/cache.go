package translate

import "strings"

// ReplyPrefix marks an identity as a reply rather than a top-level message.
const ReplyPrefix = "reply-"

// ReplyID returns the queue identity for a reply.
func ReplyID(replyID string) string {
	return ReplyPrefix + replyID
}

// IsReply reports whether the identity refers to a reply.
func IsReply(id string) bool {
	return strings.HasPrefix(id, ReplyPrefix)
}

// Cache holds translated text for one target language. Message translations
// are keyed by message ID, reply translations by reply ID without the prefix.
// It is not safe for concurrent use; Queue guards it with its own mutex.
type Cache struct {
	messages map[string]string
	replies  map[string]string
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		messages: make(map[string]string),
		replies:  make(map[string]string),
	}
}

// Lookup returns the translation stored for an identity.
func (c *Cache) Lookup(id string) (string, bool) {
	if IsReply(id) {
		v, ok := c.replies[strings.TrimPrefix(id, ReplyPrefix)]
		return v, ok
	}
	v, ok := c.messages[id]
	return v, ok
}

// Store records a translation for an identity.
func (c *Cache) Store(id, text string) {
	if IsReply(id) {
		c.replies[strings.TrimPrefix(id, ReplyPrefix)] = text
		return
	}
	c.messages[id] = text
}

// Clear drops every translation.
func (c *Cache) Clear() {
	clear(c.messages)
	clear(c.replies)
}

// Len returns the number of cached translations.
func (c *Cache) Len() int {
	return len(c.messages) + len(c.replies)
}
