package ws

import (
	"encoding/json"
	"testing"

	"github.com/benbeisheim/spartanchess-backend/internal/testutil"
)

func TestNewMessageEmbedsPayload(t *testing.T) {
	msg, err := NewMessage(MessageTypeError, map[string]string{"error": "illegal move"})
	testutil.AssertNoError(t, err)

	raw, err := json.Marshal(msg)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, string(raw), `{"type":"error","payload":{"error":"illegal move"}}`)
}
