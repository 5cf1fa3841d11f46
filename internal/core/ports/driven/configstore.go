package driven

// ConfigStore is the flat, dot-keyed view of the client configuration
// (for example "api.base_url"). Typed getters return the zero value for
// missing keys or mismatched types.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool

	// Set stores a value and persists it.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path returns the backing file path.
	Path() string
}
