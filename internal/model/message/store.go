package message

import (
	"sync"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

// Store is the append-only message log.
type Store interface {
	Append(msg Message) error
	Load() ([]Message, error)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	mu    sync.RWMutex
	items []Message
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Append adds msg to the end of the log.
func (s *MemoryStore) Append(msg Message) error {
	s.mu.Lock()
	s.items = append(s.items, msg)
	s.mu.Unlock()
	return nil
}

// Load returns a copy of the log in arrival order.
func (s *MemoryStore) Load() ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Message(nil), s.items...), nil
}

// FilterByToken returns the messages sent with token, preserving order.
func FilterByToken(items []Message, token pairing.Token) []Message {
	out := make([]Message, 0, len(items))
	for _, item := range items {
		if item.Token == token {
			out = append(out, item)
		}
	}
	return out
}
