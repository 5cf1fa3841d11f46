package driving

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// QueryController runs queries against the assistant and owns the message list.
type QueryController interface {
	// Submit appends the user message and an AI placeholder, then drives the
	// placeholder to a terminal state. The returned message is the final AI
	// message; it is non-nil whenever a placeholder was created, even when
	// err is non-nil.
	Submit(ctx context.Context, query, categoryID string) (*domain.ChatMessage, error)

	// Messages returns the conversation.
	Messages() []domain.ChatMessage

	// DeleteMessage removes one message by ID.
	DeleteMessage(id int64) bool

	// ClearConversation removes all messages.
	ClearConversation()

	// TransportName identifies the selected transport.
	TransportName() string
}
