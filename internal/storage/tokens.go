package storage

import (
	"fmt"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

// TokenFile is a pairing.Store backed by a JSON array of token strings.
type TokenFile struct {
	doc *document[pairing.Token]
}

var _ pairing.Store = (*TokenFile)(nil)

// NewTokenFile prepares a token document at path. The file itself is
// created on the first Append.
func NewTokenFile(path string) (*TokenFile, error) {
	doc, err := newDocument[pairing.Token](path)
	if err != nil {
		return nil, fmt.Errorf("token store: %w", err)
	}
	return &TokenFile{doc: doc}, nil
}

// Path returns the backing document location.
func (s *TokenFile) Path() string {
	return s.doc.path
}

// Append adds token to the document. Duplicates are not filtered.
func (s *TokenFile) Append(token pairing.Token) error {
	if err := s.doc.append(token); err != nil {
		return fmt.Errorf("append token: %w", err)
	}
	return nil
}

// Contains reports whether token is in the document.
func (s *TokenFile) Contains(token pairing.Token) (bool, error) {
	tokens, err := s.doc.load()
	if err != nil {
		return false, fmt.Errorf("load tokens: %w", err)
	}
	for _, t := range tokens {
		if t == token {
			return true, nil
		}
	}
	return false, nil
}

// List returns every stored token in append order.
func (s *TokenFile) List() ([]pairing.Token, error) {
	tokens, err := s.doc.load()
	if err != nil {
		return nil, fmt.Errorf("load tokens: %w", err)
	}
	return tokens, nil
}
