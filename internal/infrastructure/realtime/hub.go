package realtime

import (
	"sync"

	"github.com/google/uuid"

	conversation "moni-chat/internal/pkg/conversation/application/domain"
)

// Hub fans appended messages out to the live subscribers of each
// conversation. It is the in-process push feed the message stream consumes:
// whoever persists a message publishes it here, ordered per conversation by
// the store-assigned timestamp.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[string]func(conversation.Message) // conversationID -> subID -> deliver
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[string]func(conversation.Message))}
}

// Subscribe registers deliver for the conversation and returns a cancel
// handle. Cancel is synchronous: once it returns the callback is deregistered
// and will not be invoked again. Cancelling twice is a no-op.
func (h *Hub) Subscribe(conversationID string, deliver func(conversation.Message)) (cancel func()) {
	id := uuid.NewString()

	h.mu.Lock()
	room := h.subs[conversationID]
	if room == nil {
		room = make(map[string]func(conversation.Message))
		h.subs[conversationID] = room
	}
	room[id] = deliver
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			if room := h.subs[conversationID]; room != nil {
				delete(room, id)
				if len(room) == 0 {
					delete(h.subs, conversationID)
				}
			}
			h.mu.Unlock()
		})
	}
}

// Publish delivers m to every subscriber of the conversation and reports how
// many were reached. Callbacks run on the caller's goroutine, outside the hub
// lock, so a subscriber may cancel itself from within its callback.
func (h *Hub) Publish(conversationID string, m conversation.Message) int {
	h.mu.RLock()
	room := h.subs[conversationID]
	targets := make([]func(conversation.Message), 0, len(room))
	for _, deliver := range room {
		targets = append(targets, deliver)
	}
	h.mu.RUnlock()

	for _, deliver := range targets {
		deliver(m)
	}
	return len(targets)
}

// Close drops every subscription. Pending Publish calls that already took
// their snapshot may still deliver once.
func (h *Hub) Close() {
	h.mu.Lock()
	h.subs = make(map[string]map[string]func(conversation.Message))
	h.mu.Unlock()
}
