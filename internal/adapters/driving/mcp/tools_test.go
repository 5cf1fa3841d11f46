package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

func newTestServer(t *testing.T, query *mockQueryController, docs *mockSynchronizer) *Server {
	t.Helper()
	server, err := NewServer(&Ports{Query: query, Documents: docs})
	require.NoError(t, err)
	return server
}

func TestServer_handleAsk(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer and sources", func(t *testing.T) {
		query := &mockQueryController{reply: &domain.ChatMessage{
			Content: "Paris",
			Sources: []domain.Source{
				{ID: "s1", Score: 0.9, Document: &domain.SourceDocument{Title: "Atlas", URL: "https://x/atlas"}},
				{ID: "s2", Score: 0.4},
			},
		}}
		server := newTestServer(t, query, &mockSynchronizer{})

		result, output, err := server.handleAsk(ctx, nil, AskInput{Query: "capital?", Category: "geo"})

		require.NoError(t, err)
		assert.Nil(t, result)
		assert.Equal(t, "capital?", query.query)
		assert.Equal(t, "geo", query.category)
		assert.Equal(t, "Paris", output.Answer)
		assert.Equal(t, "stream", output.Transport)
		require.Len(t, output.Sources, 2)
		assert.Equal(t, SourceOutput{ID: "s1", Score: 0.9, Title: "Atlas", URL: "https://x/atlas"}, output.Sources[0])
		assert.Equal(t, "s2", output.Sources[1].ID)
	})

	t.Run("failed query still returns the final message", func(t *testing.T) {
		query := &mockQueryController{
			reply: &domain.ChatMessage{Content: domain.FallbackAnswer},
			err:   errors.New("boom"),
		}
		server := newTestServer(t, query, &mockSynchronizer{})

		result, output, err := server.handleAsk(ctx, nil, AskInput{Query: "q"})

		require.NoError(t, err)
		require.NotNil(t, result)
		assert.True(t, result.IsError)
		require.Len(t, result.Content, 1)
		assert.Contains(t, result.Content[0].(*mcp.TextContent).Text, "boom")
		assert.Equal(t, domain.FallbackAnswer, output.Answer)
	})

	t.Run("rejected query returns error", func(t *testing.T) {
		query := &mockQueryController{err: domain.ErrEmptyQuery}
		server := newTestServer(t, query, &mockSynchronizer{})

		_, _, err := server.handleAsk(ctx, nil, AskInput{Query: " "})

		assert.ErrorIs(t, err, domain.ErrEmptyQuery)
	})
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	docs := &mockSynchronizer{items: []domain.KnowledgeItem{
		{ID: "1", Title: "Beta", Category: "hr", Type: domain.ContentTypePDF, CreatedAt: base},
		{ID: "2", Title: "Alpha", Category: "hr", Type: domain.ContentTypeText, CreatedAt: base.Add(time.Hour)},
		{ID: "3", Title: "Gamma", Category: "ops", Type: domain.ContentTypeCSV},
	}}

	t.Run("filters and sorts", func(t *testing.T) {
		server := newTestServer(t, &mockQueryController{}, docs)

		_, output, err := server.handleList(ctx, nil, ListInput{Category: "hr", Sort: "a-z"})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "Alpha", output.Documents[0].Title)
		assert.Equal(t, "Beta", output.Documents[1].Title)
		assert.Equal(t, "pdf", output.Documents[1].Type)
		assert.Equal(t, "2024-05-01T00:00:00Z", output.Documents[1].CreatedAt)
	})

	t.Run("search matches title", func(t *testing.T) {
		server := newTestServer(t, &mockQueryController{}, docs)

		_, output, err := server.handleList(ctx, nil, ListInput{Search: "gam"})

		require.NoError(t, err)
		require.Len(t, output.Documents, 1)
		assert.Equal(t, "3", output.Documents[0].ID)
		assert.Empty(t, output.Documents[0].CreatedAt)
	})

	t.Run("load failure returns error", func(t *testing.T) {
		server := newTestServer(t, &mockQueryController{}, &mockSynchronizer{loadErr: errors.New("offline")})

		_, _, err := server.handleList(ctx, nil, ListInput{})

		assert.EqualError(t, err, "offline")
	})
}

func TestServer_handleDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes document", func(t *testing.T) {
		docs := &mockSynchronizer{}
		server := newTestServer(t, &mockQueryController{}, docs)

		_, output, err := server.handleDelete(ctx, nil, DeleteInput{ID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.Deleted)
		assert.Equal(t, []string{"doc-1"}, docs.deleted)
	})

	t.Run("backend failure returns error", func(t *testing.T) {
		docs := &mockSynchronizer{deleteErr: errors.New("denied")}
		server := newTestServer(t, &mockQueryController{}, docs)

		_, _, err := server.handleDelete(ctx, nil, DeleteInput{ID: "doc-1"})

		assert.EqualError(t, err, "denied")
	})
}
