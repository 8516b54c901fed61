package storage

import (
	"fmt"

	"github.com/zhouzirui/pairrelay/internal/model/message"
)

// MessageFile is a message.Store backed by a JSON array of message records.
type MessageFile struct {
	doc *document[message.Message]
}

var _ message.Store = (*MessageFile)(nil)

// NewMessageFile prepares a message document at path.
func NewMessageFile(path string) (*MessageFile, error) {
	doc, err := newDocument[message.Message](path)
	if err != nil {
		return nil, fmt.Errorf("message store: %w", err)
	}
	return &MessageFile{doc: doc}, nil
}

// Path returns the backing document location.
func (s *MessageFile) Path() string {
	return s.doc.path
}

// Append adds msg after every previously stored message.
func (s *MessageFile) Append(msg message.Message) error {
	if err := s.doc.append(msg); err != nil {
		return fmt.Errorf("append message: %w", err)
	}
	return nil
}

// Load returns the message log in arrival order.
func (s *MessageFile) Load() ([]message.Message, error) {
	items, err := s.doc.load()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	return items, nil
}
