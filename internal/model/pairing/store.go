package pairing

import "sync"

// Store persists every token handed out by pairing.
//
// Append must make the token visible to Contains before it returns nil.
// Implementations report I/O failures as errors; unreadable or corrupt
// contents count as an empty set.
type Store interface {
	Append(token Token) error
	Contains(token Token) (bool, error)
}

// MemoryStore implements Store with an in-memory set, suitable for tests.
type MemoryStore struct {
	mu     sync.RWMutex
	tokens []Token
	index  map[Token]struct{}
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied tokens.
func NewMemoryStore(tokens ...Token) *MemoryStore {
	s := &MemoryStore{index: make(map[Token]struct{}, len(tokens))}
	for _, token := range tokens {
		s.tokens = append(s.tokens, token)
		s.index[token] = struct{}{}
	}
	return s
}

// Append records token.
func (s *MemoryStore) Append(token Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens = append(s.tokens, token)
	s.index[token] = struct{}{}
	return nil
}

// Contains reports whether token was appended.
func (s *MemoryStore) Contains(token Token) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[token]
	return ok, nil
}

// List returns the tokens in append order.
func (s *MemoryStore) List() []Token {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Token(nil), s.tokens...)
}
