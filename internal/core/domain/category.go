package domain

import (
	"strings"
	"time"
)

// Category sentinels.
const (
	// CategoryAll matches every item and maps to an empty query category.
	CategoryAll = "all"

	// CategoryAllName is the display name of CategoryAll.
	CategoryAllName = "All Items"

	// CategoryDocuments groups pdf and doc items regardless of their category.
	CategoryDocuments = "documents"
)

// Category is a named partition of the library.
// Categories are only ever added, never deleted.
type Category struct {
	// ID is the internal key stored on items.
	ID string

	// Name is the display name sent to the backend.
	Name string

	// ChannelID is an optional external channel identifier
	// (e.g. a generated contact number).
	ChannelID string

	// CreatedAt is when the category was added.
	CreatedAt time.Time
}

// CategoryID derives a stable key from a display name.
func CategoryID(name string) string {
	fields := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return strings.Join(fields, "-")
}
