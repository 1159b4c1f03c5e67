package notify

import (
	"context"
	"sync"

	"nutrify/diet-tracker/internal/domain"
)

// Hub delivers events to in-process subscribers, e.g. open SSE streams.
// Slow subscribers lose events instead of blocking the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	bufLen int
}

type subscription struct {
	ch chan domain.Event
}

// NewHub creates a hub whose subscriber channels hold bufLen events.
func NewHub(bufLen int) *Hub {
	if bufLen <= 0 {
		bufLen = 16
	}
	return &Hub{subs: make(map[string]map[*subscription]struct{}), bufLen: bufLen}
}

// Subscribe registers a listener for userID. The returned cancel func must be
// called once; it closes the channel.
func (h *Hub) Subscribe(userID string) (<-chan domain.Event, func()) {
	s := &subscription{ch: make(chan domain.Event, h.bufLen)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscription]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return s.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], s)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(s.ch)
		})
	}
}

// Subscribers returns the number of listeners of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Publish implements Sink.
func (h *Hub) Publish(_ context.Context, ev domain.Event) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[ev.UserID] {
		select {
		case s.ch <- ev:
		default:
		}
	}
	return nil
}
