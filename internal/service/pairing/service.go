// Package pairing issues tokens to clients that want to submit messages.
package pairing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

var ErrStorageFailure = errors.New("token could not be persisted")

// Service answers pairing requests.
type Service struct {
	store     pairing.Store
	generator Generator
	logger    *slog.Logger
}

// NewService wires a token store to a generator. A nil generator falls back
// to RandomGenerator.
func NewService(store pairing.Store, generator Generator) *Service {
	if generator == nil {
		generator = RandomGenerator{}
	}
	return &Service{
		store:     store,
		generator: generator,
		logger:    slog.Default().With("component", "pairing"),
	}
}

// Pair issues a new token. The token is returned only after the store has
// accepted it, so it can authorize submissions immediately. A store failure
// discards the token and is not retried.
func (s *Service) Pair(ctx context.Context) (pairing.Token, error) {
	token := s.generator.Generate()

	if err := s.store.Append(token); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist token", "error", err)
		return "", fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}

	s.logger.InfoContext(ctx, "token issued", "token", token.Redacted())
	return token, nil
}
