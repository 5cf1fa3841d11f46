// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - KnowledgeAPI: The remote knowledge backend, reached through the fetch gateway
//   - QueryTransport: Streaming or buffered delivery of query answers
//   - ItemCache: The client-side cache of knowledge items
//   - MessageStore: The conversation message list
//   - SessionStore: Durable credential, email and organization
//   - CategoryStore: Durable category set
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - FileValidator: Pre-upload validation; without it no warnings are produced
//   - TokenInspector: Credential expiry checks at bootstrap
//   - SchedulerStore: Background task state; without it task state is not persisted
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
