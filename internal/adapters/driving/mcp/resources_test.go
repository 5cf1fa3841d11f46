package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}}
}

func TestExtractDocumentID(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid document URI", uri: "kbsync://documents/doc-456", expected: "doc-456"},
		{name: "invalid prefix", uri: "file://documents/doc-456", expected: ""},
		{name: "collection URI", uri: "kbsync://documents", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractDocumentID(tt.uri))
		})
	}
}

func TestServer_handleDocumentsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns documents as JSON", func(t *testing.T) {
		docs := &mockSynchronizer{items: []domain.KnowledgeItem{
			{ID: "doc-1", Title: "Policy", Category: "hr", Type: domain.ContentTypeDoc},
		}}
		server := newTestServer(t, &mockQueryController{}, docs)

		result, err := server.handleDocumentsResource(ctx, readRequest("kbsync://documents"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)

		var got []DocumentOutput
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "doc-1", got[0].ID)
		assert.Equal(t, 1, docs.loads)
	})

	t.Run("load failure returns error", func(t *testing.T) {
		server := newTestServer(t, &mockQueryController{}, &mockSynchronizer{loadErr: errors.New("offline")})

		_, err := server.handleDocumentsResource(ctx, readRequest("kbsync://documents"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "offline")
	})
}

func TestServer_handleDocumentContentResource(t *testing.T) {
	ctx := context.Background()
	docs := &mockSynchronizer{items: []domain.KnowledgeItem{{ID: "doc-1", Content: "hello"}}}
	server := newTestServer(t, &mockQueryController{}, docs)

	t.Run("returns cached content", func(t *testing.T) {
		result, err := server.handleDocumentContentResource(ctx, readRequest("kbsync://documents/doc-1"))

		require.NoError(t, err)
		assert.Equal(t, "hello", result.Contents[0].Text)
		assert.Equal(t, "text/plain", result.Contents[0].MIMEType)
	})

	t.Run("unknown document is not found", func(t *testing.T) {
		_, err := server.handleDocumentContentResource(ctx, readRequest("kbsync://documents/nope"))

		assert.Error(t, err)
	})
}

func TestServer_handleCategoriesResource(t *testing.T) {
	categories := &mockCategoryService{categories: []domain.Category{{ID: "hr", Name: "HR"}}}
	server, err := NewServer(&Ports{
		Query:      &mockQueryController{},
		Documents:  &mockSynchronizer{},
		Categories: categories,
	})
	require.NoError(t, err)

	result, err := server.handleCategoriesResource(context.Background(), readRequest("kbsync://categories"))

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"hr","name":"HR"}]`, result.Contents[0].Text)
}
