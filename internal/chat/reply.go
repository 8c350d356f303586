package chat

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Fixed texts shown by the widget.
const (
	Greeting      = "Hi there! I'm Harbor, your virtual care coordinator. How can I help you today?"
	Apology       = "Sorry, I'm having trouble connecting right now. Please try again in a moment."
	EmptyFallback = "I received your message, but couldn't process the response. Please try again."
)

// The canonical webhook answer is {"response": "..."}. The other keys are
// shapes older automation flows still produce.
var (
	arrayReplyKeys  = []string{"output", "Output", "response", "Response"}
	objectReplyKeys = []string{"response", "message", "text", "Reply", "reply", "Response", "Message", "output", "Output", "data"}
)

// ExtractReply pulls the reply text out of a webhook body. It fails only when
// the body is not JSON; replies it cannot read become EmptyFallback.
func ExtractReply(body []byte) (string, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("chat: decode webhook reply: %w", err)
	}

	var candidate any
	switch v := data.(type) {
	case []any:
		if len(v) > 0 {
			if first, ok := v[0].(map[string]any); ok {
				candidate = firstTruthy(first, arrayReplyKeys)
			}
			break
		}
		candidate = firstTruthy(nil, objectReplyKeys)
	case map[string]any:
		candidate = firstTruthy(v, objectReplyKeys)
	case string:
		candidate = v
	}

	if !truthy(candidate) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, body); err == nil {
			candidate = compact.String()
		}
	}

	text, ok := candidate.(string)
	if !ok || strings.TrimSpace(text) == "" {
		return EmptyFallback, nil
	}
	return strings.TrimSpace(text), nil
}

func firstTruthy(m map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

// truthy follows JSON-ish truthiness: null, false, 0 and "" are falsy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}
