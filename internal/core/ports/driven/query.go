package driven

import "github.com/custodia-labs/kbsync/internal/core/domain"

// QueryRequest is a natural-language query bound to a category.
type QueryRequest struct {
	// Query is the question text.
	Query string

	// Category is the display name; empty searches everything.
	Category string

	// Stream asks the backend to publish the answer on the event stream.
	Stream bool

	// StreamID correlates the initiating POST with the event connection.
	StreamID string
}

// QueryAnswer is the result of a query.
type QueryAnswer struct {
	// Response is the full answer text. For streamed answers it is whatever
	// the initiating request returned and is not applied to the message.
	Response string

	// Sources are the citations, if the backend provided any.
	Sources []domain.Source

	// Streamed is set when the text was delivered through onChunk.
	Streamed bool
}
