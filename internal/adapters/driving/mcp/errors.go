// Package mcp provides an MCP (Model Context Protocol) server adapter for kbsync.
// It lets AI assistants ask the knowledge base and manage its documents.
package mcp

import "errors"

var (
	// ErrMissingQueryController is returned when the query controller is not provided.
	ErrMissingQueryController = errors.New("mcp: query controller is required")

	// ErrMissingSynchronizer is returned when the document synchronizer is not provided.
	ErrMissingSynchronizer = errors.New("mcp: document synchronizer is required")
)
