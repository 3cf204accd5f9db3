package message

import "sync"

// Hub fans new messages out to live websocket subscribers of a conversation.
type Hub struct {
	mu   sync.RWMutex
	subs map[uint]map[chan Message]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[chan Message]struct{})}
}

// Subscribe returns a channel of new messages and a func that unsubscribes.
func (h *Hub) Subscribe(conversationID uint) (<-chan Message, func()) {
	ch := make(chan Message, 16)
	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[chan Message]struct{})
	}
	h.subs[conversationID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[conversationID], ch)
			if len(h.subs[conversationID]) == 0 {
				delete(h.subs, conversationID)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
}

// Publish never blocks; a subscriber with a full buffer misses the message.
func (h *Hub) Publish(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[msg.ConversationID] {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) Subscribers(conversationID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}
