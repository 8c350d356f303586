package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyMessage is returned for blank input.
	ErrEmptyMessage = errors.New("chat: message is empty")
	// ErrBusy is returned while a previous message is still awaiting its reply.
	ErrBusy = errors.New("chat: a reply is still pending")
)

// WebhookError is a non-2xx answer from the chat webhook.
type WebhookError struct {
	StatusCode int
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf("chat: webhook returned status %d", e.StatusCode)
}
