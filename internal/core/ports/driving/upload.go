package driving

import (
	"context"

	"github.com/custodia-labs/kbsync/internal/core/domain"
)

// UploadFile is one file of a batch.
type UploadFile struct {
	Name    string
	Content []byte
}

// FileFailure is a per-file upload error.
type FileFailure struct {
	Name string
	Err  error
}

// BatchResult summarises an upload batch.
type BatchResult struct {
	// Uploaded are the cache rows created for successful files.
	Uploaded []domain.KnowledgeItem

	// Failed are the files whose upload failed.
	Failed []FileFailure

	// Warnings are validation findings; they did not block uploads.
	Warnings []string

	// Progress is the last progress value reported, 1 after a complete batch.
	Progress float64
}

// ProgressFunc receives progress in [0, 1].
type ProgressFunc func(progress float64)

// UploadPipeline uploads files sequentially.
type UploadPipeline interface {
	// Upload transmits files in order. A failed file does not abort the batch.
	Upload(ctx context.Context, files []UploadFile, categoryID string, onProgress ProgressFunc) (*BatchResult, error)
}
