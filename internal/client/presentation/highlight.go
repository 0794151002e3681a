package presentation

import (
	"sync"
	"time"
)

// Highlighter flashes one message for a fixed duration after "jump to
// original". The highlight clears itself; onExpire lets the owner re-render
// when it does.
type Highlighter struct {
	duration time.Duration
	now      func() time.Time
	onExpire func()

	mu    sync.Mutex
	id    string
	until time.Time
	timer *time.Timer
}

func NewHighlighter(d time.Duration, now func() time.Time, onExpire func()) *Highlighter {
	if now == nil {
		now = time.Now
	}
	return &Highlighter{duration: d, now: now, onExpire: onExpire}
}

// Flash highlights id, replacing any current highlight.
func (h *Highlighter) Flash(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.timer != nil {
		h.timer.Stop()
	}
	h.id = id
	h.until = h.now().Add(h.duration)
	if h.onExpire != nil {
		h.timer = time.AfterFunc(h.duration, h.onExpire)
	}
}

// Active returns the highlighted message, or "" once the duration elapsed.
func (h *Highlighter) Active() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.id == "" || !h.now().Before(h.until) {
		return ""
	}
	return h.id
}

// Stop clears the highlight and cancels the expiry callback.
func (h *Highlighter) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.id = ""
}
