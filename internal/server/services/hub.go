package services

import (
	"context"
	"sync"
)

// Hub fans room change notifications out to watchers. Notifications
// coalesce: a watcher that is busy sending a snapshot sees at most one
// pending signal, however many writes happened meanwhile.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe registers a watcher of roomID. cancel must be called once the
// watcher is done.
func (h *Hub) Subscribe(roomID string) (signals <-chan struct{}, cancel func()) {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	room, ok := h.subs[roomID]
	if !ok {
		room = make(map[chan struct{}]struct{})
		h.subs[roomID] = room
	}
	room[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[roomID], ch)
			if len(h.subs[roomID]) == 0 {
				delete(h.subs, roomID)
			}
		})
	}
}

// Publish signals every watcher of roomID without blocking.
func (h *Hub) Publish(roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[roomID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// PublishAll signals every watcher of every room, as after a gap in the
// change feed.
func (h *Hub) PublishAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, room := range h.subs {
		for ch := range room {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
}

// Notify makes Hub a Notifier for single-instance deployments.
func (h *Hub) Notify(_ context.Context, roomID string) error {
	h.Publish(roomID)
	return nil
}

// Watchers returns the number of watchers of roomID.
func (h *Hub) Watchers(roomID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[roomID])
}
