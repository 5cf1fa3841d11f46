package domain

import "time"

// Sender identifies who authored a chat message.
type Sender string

// Message senders.
const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// FallbackAnswer replaces the content of an AI message whose query failed
// before any text arrived.
const FallbackAnswer = "Sorry, I couldn't process your question right now. Please try again."

// ChatMessage is one turn in a conversation.
// User messages are immutable. AI message content only grows by append
// while IsStreaming is set, and neither is mutated once terminal.
type ChatMessage struct {
	// ID is locally assigned and monotonic.
	ID int64

	// Content is the message text.
	Content string

	// Sender is SenderUser or SenderAI.
	Sender Sender

	// Timestamp is when the message was created.
	Timestamp time.Time

	// Category is the category binding of the query.
	Category string

	// IsStreaming is set on an AI placeholder until it reaches a terminal state.
	IsStreaming bool

	// Sources are the citations attached on completion.
	Sources []Source
}

// Source is a citation attached to a completed AI message.
type Source struct {
	// ID identifies the cited chunk or document.
	ID string

	// Score is the relevance score in [0, 1].
	Score float64

	// Document carries the originating document metadata, when known.
	Document *SourceDocument
}

// SourceDocument is the originating document of a Source.
type SourceDocument struct {
	Title    string
	FileType string
	URL      string
}
