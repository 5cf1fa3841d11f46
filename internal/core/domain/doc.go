// Package domain defines the core entities of the knowledge client.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - KnowledgeItem: An ingested document as cached by the client
//   - Category: A named partition of the library
//   - ChatMessage: One turn in a conversation with the assistant
//   - Source: A citation attached to a completed answer
//   - Session: Persisted credential, account email and organization
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
