package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for kbsync resources.
const uriScheme = "kbsync://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Documents in the knowledge base",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document-content",
		Description: "Cached content of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)

	if s.ports.Categories != nil {
		s.server.AddResource(&mcp.Resource{
			URI:         uriScheme + "categories",
			Name:        "categories",
			Description: "Known document categories",
			MIMEType:    "application/json",
		}, s.handleCategoriesResource)
	}
}

// handleDocumentsResource returns the cached documents, refreshing first.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if _, err := s.ports.Documents.LoadDocuments(ctx, false); err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	items := s.ports.Documents.Items()
	infos := make([]DocumentOutput, len(items))
	for i := range items {
		infos[i] = documentOutput(&items[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handleDocumentContentResource returns the content of a cached document.
func (s *Server) handleDocumentContentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	for _, item := range s.ports.Documents.Items() {
		if item.ID == docID {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: "text/plain",
					Text:     item.Content,
				}},
			}, nil
		}
	}
	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// handleCategoriesResource lists categories.
func (s *Server) handleCategoriesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	categories, err := s.ports.Categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	type categoryInfo struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	infos := make([]categoryInfo, len(categories))
	for i := range categories {
		infos[i] = categoryInfo{ID: categories[i].ID, Name: categories[i].Name}
	}
	return jsonResult(req.Params.URI, infos)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDocumentID extracts the document ID from a URI like kbsync://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	return strings.TrimPrefix(uri, prefix)
}
