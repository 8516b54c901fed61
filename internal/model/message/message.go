package message

import (
	"time"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

// Body is the free-form content carried by an envelope.
type Body struct {
	Payload string `json:"payload"`
}

// Envelope is a parsed submission: the claimed sender token and its body.
type Envelope struct {
	Token pairing.Token
	Body  Body
}

// Message is one accepted entry of the message log.
type Message struct {
	ID         string        `json:"id"`
	Token      pairing.Token `json:"uuid"`
	Body       Body          `json:"msg"`
	ReceivedAt time.Time     `json:"receivedAt"`
}
