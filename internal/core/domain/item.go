package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ContentType classifies an ingested document.
type ContentType string

// Content type classifications.
const (
	ContentTypeText ContentType = "text"
	ContentTypePDF  ContentType = "pdf"
	ContentTypeDoc  ContentType = "doc"
	ContentTypeCSV  ContentType = "csv"
)

// IsDocumentLike reports whether the type groups under the "documents" category.
func (c ContentType) IsDocumentLike() bool {
	return c == ContentTypePDF || c == ContentTypeDoc
}

// KnowledgeItem is one ingested document as seen by the client.
// Items are immutable once cached; the only mutation is removal.
type KnowledgeItem struct {
	// ID is assigned by the backend and unique within the cache.
	ID string

	// Title is the human-readable title.
	Title string

	// Category is a key into the category set, or CategoryAll.
	Category string

	// Type is the content classification.
	Type ContentType

	// CreatedAt is when the backend ingested the document.
	CreatedAt time.Time

	// Content is the raw text, when the backend returns it.
	Content string

	// FileURL points at the stored original file.
	FileURL string

	// ProcessingStatus is the backend ingestion state (e.g. "completed").
	ProcessingStatus string

	// WordCount is zero when unknown.
	WordCount int

	// VectorsStored is zero when unknown.
	VectorsStored int
}

// ClassifyFilename derives a content type from a file name extension.
func ClassifyFilename(name string) ContentType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return ContentTypePDF
	case ".doc", ".docx", ".odt", ".rtf":
		return ContentTypeDoc
	case ".csv":
		return ContentTypeCSV
	default:
		return ContentTypeText
	}
}

// ParseContentType normalises a backend file_type value.
// Both bare kinds ("pdf", "docx") and MIME types are accepted.
func ParseContentType(s string) ContentType {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "pdf" || strings.HasSuffix(s, "/pdf"):
		return ContentTypePDF
	case s == "doc" || s == "docx" || strings.Contains(s, "msword") ||
		strings.Contains(s, "wordprocessingml"):
		return ContentTypeDoc
	case s == "csv" || strings.HasSuffix(s, "/csv"):
		return ContentTypeCSV
	default:
		return ContentTypeText
	}
}
