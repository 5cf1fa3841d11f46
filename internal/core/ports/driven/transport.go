package driven

import "context"

// QueryTransport delivers the answer to a query.
// Implementations are selected once at startup and must honour the same
// terminal contract: Ask returns only after every onChunk call has been
// made and every connection it opened has been closed.
type QueryTransport interface {
	// Name identifies the transport ("stream" or "buffered").
	Name() string

	// Ask issues the query. Streaming implementations call onChunk for each
	// fragment in arrival order; buffered implementations never call it and
	// return the full text in QueryAnswer.Response.
	Ask(ctx context.Context, req QueryRequest, onChunk func(chunk string)) (*QueryAnswer, error)
}
