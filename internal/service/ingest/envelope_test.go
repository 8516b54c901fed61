package ingest

import (
	"errors"
	"testing"

	"github.com/zhouzirui/pairrelay/internal/model/pairing"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		token   pairing.Token
		payload string
		wantErr bool
	}{
		{name: "valid", body: `{"uuid":"Ab12xY9","msg":{"payload":"hello"}}`, token: "Ab12xY9", payload: "hello"},
		{name: "extra fields", body: `{"uuid":"Ab12xY9","msg":{"payload":"hi","kind":"text"},"v":1}`, token: "Ab12xY9", payload: "hi"},
		{name: "empty payload", body: `{"uuid":"Ab12xY9","msg":{"payload":""}}`, token: "Ab12xY9", payload: ""},
		{name: "not json", body: `not json`, wantErr: true},
		{name: "empty body", body: ``, wantErr: true},
		{name: "array", body: `[]`, wantErr: true},
		{name: "null", body: `null`, wantErr: true},
		{name: "uuid number", body: `{"uuid":12,"msg":{"payload":"x"}}`, wantErr: true},
		{name: "missing msg", body: `{"uuid":"Ab12xY9"}`, wantErr: true},
		{name: "missing payload", body: `{"uuid":"Ab12xY9","msg":{}}`, wantErr: true},
		{name: "trailing data", body: `{"uuid":"Ab12xY9","msg":{"payload":"x"}}{}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tt.body))
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedInput) {
					t.Fatalf("expected ErrMalformedInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseEnvelope err: %v", err)
			}
			if env.Token != tt.token {
				t.Fatalf("token = %q, want %q", env.Token, tt.token)
			}
			if env.Body.Payload != tt.payload {
				t.Fatalf("payload = %q, want %q", env.Body.Payload, tt.payload)
			}
		})
	}
}
