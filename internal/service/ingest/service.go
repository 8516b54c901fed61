// Package ingest accepts submitted messages from paired clients.
//
// A submission moves through parse, authorize and store in that order and
// stops at the first failing step. Nothing is retried.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/pairrelay/internal/model/message"
	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

var (
	ErrMalformedInput = errors.New("malformed message envelope")
	ErrUnauthorized   = errors.New("token not authorized")
	// ErrTokenLookup marks an authorization that failed because the token
	// store could not be read. Errors carrying it also match ErrUnauthorized.
	ErrTokenLookup    = errors.New("token lookup failed")
	ErrStorageFailure = errors.New("message could not be stored")
)

// Publisher receives every message once it is durably stored.
type Publisher interface {
	Publish(msg message.Message) int
}

// Service authorizes submissions against the token store and appends them
// to the message log.
type Service struct {
	tokens    pairing.Store
	messages  message.Store
	publisher Publisher
	now       func() time.Time
	logger    *slog.Logger
}

// NewService builds an ingest service. publisher may be nil.
func NewService(tokens pairing.Store, messages message.Store, publisher Publisher) *Service {
	return &Service{
		tokens:    tokens,
		messages:  messages,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    slog.Default().With("component", "ingest"),
	}
}

// Ingest parses raw, authorizes the claimed token and stores the message.
// Parse failures win over authorization: a malformed body is rejected even
// if it names a valid token.
func (s *Service) Ingest(ctx context.Context, raw []byte) (message.Message, error) {
	envelope, err := ParseEnvelope(raw)
	if err != nil {
		return message.Message{}, err
	}

	if err := s.Authorize(ctx, envelope.Token); err != nil {
		return message.Message{}, err
	}

	msg := message.Message{
		ID:         uuid.NewString(),
		Token:      envelope.Token,
		Body:       envelope.Body,
		ReceivedAt: s.now(),
	}
	if err := s.messages.Append(msg); err != nil {
		s.logger.ErrorContext(ctx, "failed to store message", "token", envelope.Token.Redacted(), "error", err)
		return message.Message{}, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	if s.publisher != nil {
		s.publisher.Publish(msg)
	}

	s.logger.InfoContext(ctx, "message stored", "id", msg.ID, "token", envelope.Token.Redacted())
	return msg, nil
}

// Authorize succeeds only for tokens present in the token store.
func (s *Service) Authorize(ctx context.Context, token pairing.Token) error {
	ok, err := s.tokens.Contains(token)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to read token store", "error", err)
		return fmt.Errorf("%w: %w: %w", ErrUnauthorized, ErrTokenLookup, err)
	}
	if !ok {
		return ErrUnauthorized
	}
	return nil
}

// Messages returns the messages stored for token in arrival order, after
// authorizing token the same way Ingest does.
func (s *Service) Messages(ctx context.Context, token pairing.Token) ([]message.Message, error) {
	if err := s.Authorize(ctx, token); err != nil {
		return nil, err
	}

	items, err := s.messages.Load()
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to load messages", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
	return message.FilterByToken(items, token), nil
}
