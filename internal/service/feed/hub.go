// Package feed fans accepted messages out to live subscribers.
//
// The hub is best effort: the message log stays the source of truth and a
// subscriber whose buffer is full misses messages instead of stalling ingest.
package feed

import (
	"sync"

	"github.com/zhouzirui/pairrelay/internal/model/message"
	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

// DefaultBuffer is the per-subscriber channel capacity.
const DefaultBuffer = 32

// Hub routes messages to subscribers keyed by token.
type Hub struct {
	mu     sync.RWMutex
	subs   map[pairing.Token]map[*subscriber]struct{}
	buffer int
	closed bool
}

type subscriber struct {
	ch   chan message.Message
	once sync.Once
}

// NewHub creates a hub whose subscriber channels hold buffer messages.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[pairing.Token]map[*subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe returns a channel receiving messages sent with token and a
// cancel func that unsubscribes and closes the channel. Subscribing to a
// closed hub yields an already closed channel.
func (h *Hub) Subscribe(token pairing.Token) (<-chan message.Message, func()) {
	sub := &subscriber{ch: make(chan message.Message, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.close()
		return sub.ch, func() {}
	}
	set, ok := h.subs[token]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[token] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[token]; ok {
			delete(set, sub)
			if len(set) == 0 {
				delete(h.subs, token)
			}
		}
		h.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// Publish delivers msg to every subscriber of msg.Token without blocking.
// It reports how many subscribers received it.
func (h *Hub) Publish(msg message.Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.subs[msg.Token] {
		select {
		case sub.ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of live subscriptions for token.
func (h *Hub) Subscribers(token pairing.Token) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[token])
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for token, set := range h.subs {
		for sub := range set {
			sub.close()
		}
		delete(h.subs, token)
	}
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.ch) })
}
