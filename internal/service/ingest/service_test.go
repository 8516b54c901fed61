package ingest_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/pairrelay/internal/model/message"
	"github.com/zhouzirui/pairrelay/internal/model/pairing"
	"github.com/zhouzirui/pairrelay/internal/service/feed"
	"github.com/zhouzirui/pairrelay/internal/service/ingest"
	pairingservice "github.com/zhouzirui/pairrelay/internal/service/pairing"
	"github.com/zhouzirui/pairrelay/internal/storage"
)

type brokenTokens struct{}

func (brokenTokens) Append(pairing.Token) error           { return errors.New("read-only") }
func (brokenTokens) Contains(pairing.Token) (bool, error) { return false, errors.New("io error") }

type brokenMessages struct{}

func (brokenMessages) Append(message.Message) error     { return errors.New("disk full") }
func (brokenMessages) Load() ([]message.Message, error) { return nil, errors.New("io error") }

func TestIngestScenario(t *testing.T) {
	dir := t.TempDir()
	tokens, err := storage.NewTokenFile(filepath.Join(dir, "tokens.json"))
	require.NoError(t, err)
	messages, err := storage.NewMessageFile(filepath.Join(dir, "messages.json"))
	require.NoError(t, err)

	ctx := context.Background()
	pairer := pairingservice.NewService(tokens, pairingservice.GeneratorFunc(func() pairing.Token { return "Ab12xY9" }))
	svc := ingest.NewService(tokens, messages, nil)

	token, err := pairer.Pair(ctx)
	require.NoError(t, err)
	require.Equal(t, pairing.Token("Ab12xY9"), token)

	stored, err := svc.Ingest(ctx, []byte(`{"uuid":"Ab12xY9","msg":{"payload":"hello"}}`))
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.ReceivedAt.IsZero())

	items, err := messages.Load()
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hello", items[0].Body.Payload)
	assert.Equal(t, pairing.Token("Ab12xY9"), items[0].Token)

	_, err = svc.Ingest(ctx, []byte(`{"uuid":"ZZZZZZZ","msg":{"payload":"x"}}`))
	assert.ErrorIs(t, err, ingest.ErrUnauthorized)
	assert.NotErrorIs(t, err, ingest.ErrTokenLookup)

	items, err = messages.Load()
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.Ingest(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, ingest.ErrMalformedInput)
}

func TestIngestAuthorizesEveryPairedToken(t *testing.T) {
	tokens := pairing.NewMemoryStore()
	messages := message.NewMemoryStore()
	pairer := pairingservice.NewService(tokens, nil)
	svc := ingest.NewService(tokens, messages, nil)
	ctx := context.Background()

	const n = 10
	for i := 0; i < n; i++ {
		token, err := pairer.Pair(ctx)
		require.NoError(t, err)

		body := `{"uuid":"` + token.String() + `","msg":{"payload":"p"}}`
		_, err = svc.Ingest(ctx, []byte(body))
		require.NoError(t, err)
	}

	items, err := messages.Load()
	require.NoError(t, err)
	assert.Len(t, items, n)
}

func TestIngestMalformedBeatsValidToken(t *testing.T) {
	tokens := pairing.NewMemoryStore("Ab12xY9")
	messages := message.NewMemoryStore()
	svc := ingest.NewService(tokens, messages, nil)

	bodies := []string{
		`{"uuid":"Ab12xY9","msg":{"payload":"hello"}} trailing`,
		`{"uuid":"Ab12xY9","msg":"hello"}`,
		`{"uuid":"Ab12xY9"}`,
		`{"uuid":"Ab12xY9","msg":{"payload":7}}`,
	}
	for _, body := range bodies {
		_, err := svc.Ingest(context.Background(), []byte(body))
		assert.ErrorIs(t, err, ingest.ErrMalformedInput, body)
		assert.NotErrorIs(t, err, ingest.ErrUnauthorized, body)
	}

	items, _ := messages.Load()
	assert.Empty(t, items)
}

func TestIngestTokenLookupFailure(t *testing.T) {
	svc := ingest.NewService(brokenTokens{}, message.NewMemoryStore(), nil)

	_, err := svc.Ingest(context.Background(), []byte(`{"uuid":"Ab12xY9","msg":{"payload":"x"}}`))
	assert.ErrorIs(t, err, ingest.ErrUnauthorized)
	assert.ErrorIs(t, err, ingest.ErrTokenLookup)
}

func TestIngestStorageFailure(t *testing.T) {
	hub := feed.NewHub(1)
	ch, cancel := hub.Subscribe("Ab12xY9")
	defer cancel()

	svc := ingest.NewService(pairing.NewMemoryStore("Ab12xY9"), brokenMessages{}, hub)

	_, err := svc.Ingest(context.Background(), []byte(`{"uuid":"Ab12xY9","msg":{"payload":"x"}}`))
	assert.ErrorIs(t, err, ingest.ErrStorageFailure)

	select {
	case msg := <-ch:
		t.Fatalf("unstored message was published: %+v", msg)
	default:
	}
}

func TestIngestPublishesStoredMessage(t *testing.T) {
	hub := feed.NewHub(1)
	ch, cancel := hub.Subscribe("Ab12xY9")
	defer cancel()

	svc := ingest.NewService(pairing.NewMemoryStore("Ab12xY9"), message.NewMemoryStore(), hub)

	stored, err := svc.Ingest(context.Background(), []byte(`{"uuid":"Ab12xY9","msg":{"payload":"hello"}}`))
	require.NoError(t, err)

	got := <-ch
	assert.Equal(t, stored.ID, got.ID)
}

func TestMessagesFiltersByToken(t *testing.T) {
	tokens := pairing.NewMemoryStore("Ab12xY9", "QQQQ111")
	svc := ingest.NewService(tokens, message.NewMemoryStore(), nil)
	ctx := context.Background()

	for _, body := range []string{
		`{"uuid":"Ab12xY9","msg":{"payload":"a1"}}`,
		`{"uuid":"QQQQ111","msg":{"payload":"b1"}}`,
		`{"uuid":"Ab12xY9","msg":{"payload":"a2"}}`,
	} {
		_, err := svc.Ingest(ctx, []byte(body))
		require.NoError(t, err)
	}

	items, err := svc.Messages(ctx, "Ab12xY9")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a1", items[0].Body.Payload)
	assert.Equal(t, "a2", items[1].Body.Payload)

	_, err = svc.Messages(ctx, "ZZZZZZZ")
	assert.ErrorIs(t, err, ingest.ErrUnauthorized)
}

func TestMessagesLoadFailure(t *testing.T) {
	svc := ingest.NewService(pairing.NewMemoryStore("Ab12xY9"), brokenMessages{}, nil)

	_, err := svc.Messages(context.Background(), "Ab12xY9")
	assert.ErrorIs(t, err, ingest.ErrStorageFailure)
}
