package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/pairrelay/internal/model/message"
)

func TestMessageFile_AppendPreservesOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store, err := NewMessageFile(path)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, payload := range []string{"one", "two", "three"} {
		require.NoError(t, store.Append(message.Message{
			ID:         payload,
			Token:      "Ab12xY9",
			Body:       message.Body{Payload: payload},
			ReceivedAt: base.Add(time.Duration(i) * time.Second),
		}))

		items, err := store.Load()
		require.NoError(t, err)
		require.Len(t, items, i+1)
	}

	items, err := store.Load()
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "one", items[0].Body.Payload)
	assert.Equal(t, "two", items[1].Body.Payload)
	assert.Equal(t, "three", items[2].Body.Payload)
	assert.True(t, items[2].ReceivedAt.Equal(base.Add(2*time.Second)))
}

func TestMessageFile_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	store, err := NewMessageFile(path)
	require.NoError(t, err)

	require.NoError(t, store.Append(message.Message{
		ID:    "id-1",
		Token: "Ab12xY9",
		Body:  message.Body{Payload: "hello"},
	}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc []map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	require.Len(t, doc, 1)
	assert.Equal(t, "Ab12xY9", doc[0]["uuid"])
	assert.Equal(t, map[string]any{"payload": "hello"}, doc[0]["msg"])
}

func TestMessageFile_CorruptDocumentStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, []byte("[{"), 0o644))

	store, err := NewMessageFile(path)
	require.NoError(t, err)

	items, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, store.Append(message.Message{ID: "a", Token: "Ab12xY9"}))
	items, err = store.Load()
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestNewMessageFile_RejectsEmptyPath(t *testing.T) {
	_, err := NewMessageFile("")
	assert.Error(t, err)
}
