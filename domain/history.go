package domain

import "sync"

const DefaultHistoryLimit = 200

// ConversationHistory is a bounded, append-only message log backed by a
// ring buffer: appending beyond capacity overwrites the oldest entry in
// O(1). Past entries are never mutated or reordered.
//
// ConversationHistory is safe for concurrent use by multiple goroutines.
type ConversationHistory struct {
	mu   sync.RWMutex
	buf  []Message
	head int // index of the oldest entry
	size int
}

func NewConversationHistory(capacity int) *ConversationHistory {
	if capacity <= 0 {
		capacity = DefaultHistoryLimit
	}
	return &ConversationHistory{buf: make([]Message, capacity)}
}

// Add appends a message, overwriting the oldest entry when at capacity.
func (h *ConversationHistory) Add(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.size == len(h.buf) {
		h.buf[h.head] = message
		h.head = (h.head + 1) % len(h.buf)
		return
	}
	h.buf[(h.head+h.size)%len(h.buf)] = message
	h.size++
}

// Snapshot returns an independent ordered copy of the current contents,
// oldest first. Callers can iterate it freely while new messages keep
// arriving.
func (h *ConversationHistory) Snapshot() []Message {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Message, h.size)
	for i := range out {
		out[i] = h.buf[(h.head+i)%len(h.buf)]
	}
	return out
}

func (h *ConversationHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.size
}
