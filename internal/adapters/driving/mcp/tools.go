package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/services"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Query    string `json:"query" jsonschema:"the question to ask the knowledge base"`
	Category string `json:"category,omitempty" jsonschema:"category id to restrict the search (default all)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string         `json:"answer"`
	Sources   []SourceOutput `json:"sources,omitempty"`
	Transport string         `json:"transport"`
}

// SourceOutput is one citation of an answer.
type SourceOutput struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
	Title string  `json:"title,omitempty"`
	URL   string  `json:"url,omitempty"`
}

// ListInput is the input schema for the list_documents tool.
type ListInput struct {
	Category string `json:"category,omitempty" jsonschema:"category id to filter by (default all)"`
	Search   string `json:"search,omitempty" jsonschema:"case-insensitive text to match in title or content"`
	Sort     string `json:"sort,omitempty" jsonschema:"newest, oldest, a-z or z-a (default newest)"`
}

// ListOutput is the output schema for the list_documents tool.
type ListOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

// DocumentOutput is one knowledge item.
type DocumentOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Category  string `json:"category"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at,omitempty"`
	Status    string `json:"status,omitempty"`
}

// DeleteInput is the input schema for the delete_document tool.
type DeleteInput struct {
	ID string `json:"id" jsonschema:"id of the document to delete"`
}

// DeleteOutput is the output schema for the delete_document tool.
type DeleteOutput struct {
	Deleted string `json:"deleted"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question answered from the knowledge base",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "List documents in the knowledge base",
	}, s.handleList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "delete_document",
		Description: "Delete a document from the knowledge base",
	}, s.handleDelete)
}

// handleAsk runs a query to completion.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	msg, err := s.ports.Query.Submit(ctx, input.Query, input.Category)
	if msg == nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    msg.Content,
		Sources:   make([]SourceOutput, len(msg.Sources)),
		Transport: s.ports.Query.TransportName(),
	}
	for i, src := range msg.Sources {
		output.Sources[i] = SourceOutput{ID: src.ID, Score: src.Score}
		if src.Document != nil {
			output.Sources[i].Title = src.Document.Title
			output.Sources[i].URL = src.Document.URL
		}
	}

	// The fallback answer is still returned so the assistant can relay it.
	if err != nil {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("query failed: %v", err)}},
		}, output, nil
	}
	return nil, output, nil
}

// handleList refreshes the cache (debounced) and returns the projected items.
func (s *Server) handleList(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListInput,
) (*mcp.CallToolResult, ListOutput, error) {
	if _, err := s.ports.Documents.LoadDocuments(ctx, false); err != nil {
		return nil, ListOutput{}, err
	}

	items := services.View(s.ports.Documents.Items(), domain.ViewOptions{
		Category: input.Category,
		Search:   input.Search,
		Order:    domain.ParseSortOrder(input.Sort),
	})

	output := ListOutput{
		Documents: make([]DocumentOutput, len(items)),
		Count:     len(items),
	}
	for i := range items {
		output.Documents[i] = documentOutput(&items[i])
	}
	return nil, output, nil
}

// handleDelete deletes one document.
func (s *Server) handleDelete(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DeleteInput,
) (*mcp.CallToolResult, DeleteOutput, error) {
	if err := s.ports.Documents.DeleteKnowledgeItem(ctx, input.ID); err != nil {
		return nil, DeleteOutput{}, err
	}
	return nil, DeleteOutput{Deleted: input.ID}, nil
}

func documentOutput(item *domain.KnowledgeItem) DocumentOutput {
	out := DocumentOutput{
		ID:       item.ID,
		Title:    item.Title,
		Category: item.Category,
		Type:     string(item.Type),
		Status:   item.ProcessingStatus,
	}
	if !item.CreatedAt.IsZero() {
		out.CreatedAt = item.CreatedAt.Format(time.RFC3339)
	}
	return out
}
