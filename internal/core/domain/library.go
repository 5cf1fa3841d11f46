package domain

// SortOrder orders library items.
type SortOrder string

// Sort orders.
const (
	SortNewest SortOrder = "newest"
	SortOldest SortOrder = "oldest"
	SortAZ     SortOrder = "a-z"
	SortZA     SortOrder = "z-a"
)

// ParseSortOrder returns the order for s, defaulting to SortNewest.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortOldest, SortAZ, SortZA:
		return SortOrder(s)
	default:
		return SortNewest
	}
}

// ViewOptions combines the library projections.
type ViewOptions struct {
	// Category filters by category key; empty or CategoryAll matches everything.
	Category string

	// Search is a case-insensitive substring over title and content.
	Search string

	// Order is the sort order.
	Order SortOrder
}

// HealthStatus is the backend health report.
type HealthStatus struct {
	Status   string
	Services map[string]string
}

// ServiceEnabled reports whether a named service is listed and not disabled.
func (h HealthStatus) ServiceEnabled(name string) bool {
	v, ok := h.Services[name]
	if !ok {
		return false
	}
	switch v {
	case "disabled", "unavailable", "down", "false":
		return false
	default:
		return true
	}
}
