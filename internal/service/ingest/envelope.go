package ingest

import (
	"encoding/json"
	"fmt"

	"github.com/zhouzirui/pairrelay/internal/model/message"
	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

type wireEnvelope struct {
	UUID *string   `json:"uuid"`
	Msg  *wireBody `json:"msg"`
}

type wireBody struct {
	Payload *string `json:"payload"`
}

// ParseEnvelope decodes a submission body of the form
// {"uuid": "<token>", "msg": {"payload": "<text>"}}. Unknown fields are
// ignored; missing fields, wrong types and trailing data are rejected.
func ParseEnvelope(raw []byte) (message.Envelope, error) {
	var wire wireEnvelope
	if err := json.Unmarshal(raw, &wire); err != nil {
		return message.Envelope{}, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	switch {
	case wire.UUID == nil:
		return message.Envelope{}, fmt.Errorf("%w: uuid is required", ErrMalformedInput)
	case wire.Msg == nil:
		return message.Envelope{}, fmt.Errorf("%w: msg is required", ErrMalformedInput)
	case wire.Msg.Payload == nil:
		return message.Envelope{}, fmt.Errorf("%w: msg.payload is required", ErrMalformedInput)
	}

	return message.Envelope{
		Token: pairing.Token(*wire.UUID),
		Body:  message.Body{Payload: *wire.Msg.Payload},
	}, nil
}
