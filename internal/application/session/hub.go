// Package session tracks the authentication phase of storefront visitors
// and fans state changes out to subscribers.
package session

import (
	"sync"

	"github.com/Lucid-Directions/jack-mack-artisan-shop/internal/domain/session"
	"go.uber.org/zap"
)

const defaultSubscriberBuffer = 4

// Hub is the process-wide session stream. Subscribers are grouped by session
// key and receive every state published for that key. The last state of a
// key is kept only while the key has subscribers.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan session.State
	last   map[string]session.State
	nextID uint64
	buffer int
	closed bool
	logger *zap.Logger
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithHubLogger sets the logger for the hub
func WithHubLogger(logger *zap.Logger) HubOption {
	return func(h *Hub) {
		h.logger = logger
	}
}

// WithSubscriberBuffer sets the per-subscriber buffer size (minimum 1)
func WithSubscriberBuffer(size int) HubOption {
	return func(h *Hub) {
		if size > 0 {
			h.buffer = size
		}
	}
}

// NewHub creates a new Hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		subs:   make(map[string]map[uint64]chan session.State),
		last:   make(map[string]session.State),
		buffer: defaultSubscriberBuffer,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers a subscriber for key. The channel first yields the
// last state published for key, or loading when none is known. The returned
// function unsubscribes and closes the channel. It is safe to call twice.
func (h *Hub) Subscribe(key string) (<-chan session.State, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan session.State, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	initial, ok := h.last[key]
	if !ok {
		initial = session.Loading()
	}
	ch <- initial

	h.nextID++
	id := h.nextID
	if h.subs[key] == nil {
		h.subs[key] = make(map[uint64]chan session.State)
	}
	h.subs[key][id] = ch

	h.logger.Debug("session subscriber added",
		zap.String("key", key),
		zap.Uint64("subscriber_id", id),
	)

	return ch, func() { h.unsubscribe(key, id) }
}

func (h *Hub) unsubscribe(key string, id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subs[key]
	if !ok {
		return
	}
	ch, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	close(ch)
	if len(subs) == 0 {
		delete(h.subs, key)
		delete(h.last, key)
	}
}

// Publish delivers state to every subscriber of key and records it as the
// latest for key. A key without subscribers records nothing. A subscriber
// with a full buffer loses its oldest pending state instead of blocking the
// publisher.
func (h *Hub) Publish(key string, state session.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.subs[key]) == 0 {
		return
	}
	h.last[key] = state

	for id, ch := range h.subs[key] {
		select {
		case ch <- state:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- state:
		default:
		}
		h.logger.Debug("session subscriber lagging, dropped oldest state",
			zap.String("key", key),
			zap.Uint64("subscriber_id", id),
		)
	}
}

// Last returns the latest state published for key while it has subscribers
func (h *Hub) Last(key string) (session.State, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.last[key]
	return s, ok
}

// RetainedStates returns the number of keys with a recorded latest state
func (h *Hub) RetainedStates() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.last)
}

// SubscriberCount returns the number of active subscriptions
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, subs := range h.subs {
		n += len(subs)
	}
	return n
}

// Close ends every subscription. Later publishes are ignored and later
// subscriptions receive a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for key, subs := range h.subs {
		for _, ch := range subs {
			close(ch)
		}
		delete(h.subs, key)
		delete(h.last, key)
	}
	h.logger.Info("Session hub closed")
}
