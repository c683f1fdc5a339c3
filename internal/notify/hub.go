package notify

import (
	"log/slog"
	"sync"
)

// DefaultBuffer is the per-subscriber channel capacity used when none is given.
const DefaultBuffer = 16

// Hub is an in-process registry of subscriber channels keyed by user.
// A user may hold several subscriptions at once, one per open stream.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
}

type subscription struct {
	ch chan Event
}

// NewHub creates a hub whose subscriber channels hold up to buffer events.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*subscription]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a new subscription for userID. The returned cancel func
// unregisters it and closes the channel; it is safe to call more than once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	sub := &subscription{ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], sub)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(sub.ch)
			h.mu.Unlock()
		})
	}
	return sub.ch, cancel
}

// Notify delivers ev to every subscription of userID without blocking.
// Subscribers with a full buffer miss the event.
func (h *Hub) Notify(userID string, ev Event) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := false
	for sub := range h.subs[userID] {
		select {
		case sub.ch <- ev:
			delivered = true
		default:
			slog.Debug("Dropping notification for slow subscriber", "user_id", userID, "type", ev.Type)
		}
	}
	return delivered
}

// Subscribers returns the number of open subscriptions for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
