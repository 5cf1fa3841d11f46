package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
	"github.com/custodia-labs/kbsync/internal/core/ports/driving"
	"github.com/custodia-labs/kbsync/internal/logger"
)

// Ensure QueryController implements the interfaces.
var (
	_ driving.QueryController = (*QueryController)(nil)
	_ driving.SessionListener = (*QueryController)(nil)
)

// QueryController issues queries and drives each AI placeholder message
// through pending -> streaming -> complete | errored.
type QueryController struct {
	transport  driven.QueryTransport
	messages   driven.MessageStore
	categories driving.CategoryService
	now        func() time.Time

	mu         sync.Mutex
	generation uint64
}

// NewQueryController creates a query controller.
// categories may be nil, in which case every query searches all categories.
func NewQueryController(
	transport driven.QueryTransport,
	messages driven.MessageStore,
	categories driving.CategoryService,
) *QueryController {
	return &QueryController{
		transport:  transport,
		messages:   messages,
		categories: categories,
		now:        time.Now,
	}
}

// Submit runs one query.
//
// The user message and the AI placeholder are appended before any network
// call. Every path ends with the placeholder's streaming flag cleared: on
// success with the streamed or buffered text, on failure with the partial
// text if any arrived, otherwise with domain.FallbackAnswer.
func (c *QueryController) Submit(ctx context.Context, query, categoryID string) (*domain.ChatMessage, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrEmptyQuery
	}
	if c.transport == nil {
		return nil, domain.ErrTransportUnavailable
	}

	gen := c.currentGeneration()
	now := c.now()

	c.messages.Append(domain.ChatMessage{
		Content:   query,
		Sender:    domain.SenderUser,
		Timestamp: now,
		Category:  categoryID,
	})
	placeholder := c.messages.Append(domain.ChatMessage{
		Sender:      domain.SenderAI,
		Timestamp:   now,
		Category:    categoryID,
		IsStreaming: true,
	})
	id := placeholder.ID

	// Whatever happens below, the placeholder must not stay streaming.
	defer c.messages.Finish(id, nil)

	req := driven.QueryRequest{Query: query}
	if c.categories != nil {
		req.Category = c.categories.QueryName(ctx, categoryID)
	}

	var chunks atomic.Int64
	logger.Debug("query %d via %s transport", id, c.transport.Name())
	answer, err := c.transport.Ask(ctx, req, func(chunk string) {
		if !c.alive(gen) {
			return
		}
		if c.messages.AppendContent(id, chunk) {
			chunks.Add(1)
		}
	})

	if !c.alive(gen) {
		logger.Debug("query %d discarded: session reset", id)
		return nil, domain.ErrStaleGeneration
	}

	if err != nil {
		c.fail(id, err)
		logger.Warn("query %d failed after %d chunks: %v", id, chunks.Load(), err)
		return c.final(id), fmt.Errorf("query: %w", err)
	}

	if answer == nil {
		answer = &driven.QueryAnswer{Streamed: true}
	}
	if !answer.Streamed {
		c.messages.SetContent(id, answer.Response)
	}
	c.messages.Finish(id, answer.Sources)
	c.messages.SetError("")
	logger.Debug("query %d complete (%d chunks, %d sources)", id, chunks.Load(), len(answer.Sources))
	return c.final(id), nil
}

// fail moves the placeholder to the errored state. Partial text is kept;
// only an empty buffer is replaced with the fallback answer.
func (c *QueryController) fail(id int64, err error) {
	if msg, ok := c.messages.Get(id); ok && msg.Content == "" {
		c.messages.SetContent(id, domain.FallbackAnswer)
	}
	c.messages.Finish(id, nil)
	c.messages.SetError(err.Error())
}

func (c *QueryController) final(id int64) *domain.ChatMessage {
	msg, ok := c.messages.Get(id)
	if !ok {
		return nil
	}
	return &msg
}

// Messages returns the conversation.
func (c *QueryController) Messages() []domain.ChatMessage {
	return c.messages.Messages()
}

// DeleteMessage removes one message by ID.
func (c *QueryController) DeleteMessage(id int64) bool {
	return c.messages.Delete(id)
}

// ClearConversation removes all messages.
func (c *QueryController) ClearConversation() {
	c.messages.Clear()
}

// TransportName identifies the selected transport.
func (c *QueryController) TransportName() string {
	if c.transport == nil {
		return ""
	}
	return c.transport.Name()
}

// OnOrganizationChanged is a no-op; conversations survive organization switches.
func (c *QueryController) OnOrganizationChanged(_ context.Context, _ string) {}

// OnLogout starts a new generation and clears the conversation.
func (c *QueryController) OnLogout() {
	c.mu.Lock()
	c.generation++
	c.mu.Unlock()
	c.messages.Clear()
	c.messages.SetError("")
}

func (c *QueryController) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *QueryController) alive(gen uint64) bool {
	return c.currentGeneration() == gen
}
