package driven

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// KnowledgeAPI is the remote knowledge backend.
// Every failure is returned as a *domain.APIError.
type KnowledgeAPI interface {
	// ListDocuments returns all ingested documents, optionally filtered by category.
	ListDocuments(ctx context.Context, category string) ([]domain.KnowledgeItem, error)

	// UploadDocument transmits one file.
	UploadDocument(ctx context.Context, req UploadRequest) (*UploadResponse, error)

	// DeleteDocument removes a document by ID.
	DeleteDocument(ctx context.Context, id string) error

	// Query issues a blocking query and returns the full answer.
	Query(ctx context.Context, req QueryRequest) (*QueryAnswer, error)

	// Health reports backend status.
	Health(ctx context.Context) (*domain.HealthStatus, error)
}

// UploadRequest is the multipart payload for one file.
type UploadRequest struct {
	FileName string
	Content  []byte
	Category string
	Title    string
}

// UploadResponse is the backend acknowledgement of an upload.
type UploadResponse struct {
	ItemID  string
	FileURL string
}
