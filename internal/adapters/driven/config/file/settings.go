package file

import (
	"os"
	"time"

	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Configuration keys.
const (
	KeyBaseURL        = "api.base_url"
	KeyTimeoutSeconds = "api.timeout_seconds"
	KeyRateLimit      = "api.rate_limit"
	KeyBurst          = "api.burst"
	KeyDebounceMS     = "sync.debounce_ms"
	KeyPollSeconds    = "sync.poll_seconds"
	KeyTransport      = "query.transport"
	KeyQueryTimeout   = "query.timeout_seconds"
	KeyOrganization   = "organization"
	KeyVerbose        = "log.verbose"
)

// Environment overrides.
const (
	EnvBaseURL      = "KBSYNC_API_URL"
	EnvOrganization = "KBSYNC_ORGANIZATION"
	EnvToken        = "KBSYNC_TOKEN"
)

// Settings is the typed client configuration.
type Settings struct {
	BaseURL      string
	Timeout      time.Duration
	RateLimit    float64
	Burst        int
	Debounce     time.Duration
	PollInterval time.Duration
	Transport    string
	QueryTimeout time.Duration
	Organization string
	Verbose      bool

	// Token comes only from the environment and is never written to disk.
	Token string
}

// DefaultSettings returns the built-in defaults.
func DefaultSettings() Settings {
	return Settings{
		BaseURL:      "http://localhost:8000",
		Timeout:      30 * time.Second,
		RateLimit:    10,
		Burst:        20,
		Debounce:     5 * time.Second,
		PollInterval: 30 * time.Second,
		Transport:    "auto",
		QueryTimeout: 120 * time.Second,
	}
}

// LoadSettings reads store over the defaults, then applies environment
// overrides through getenv. A nil getenv uses os.Getenv.
func LoadSettings(store driven.ConfigStore, getenv func(string) string) Settings {
	if getenv == nil {
		getenv = os.Getenv
	}
	s := DefaultSettings()

	if v := store.GetString(KeyBaseURL); v != "" {
		s.BaseURL = v
	}
	if v := store.GetInt(KeyTimeoutSeconds); v > 0 {
		s.Timeout = time.Duration(v) * time.Second
	}
	if v := store.GetInt(KeyRateLimit); v > 0 {
		s.RateLimit = float64(v)
	}
	if v := store.GetInt(KeyBurst); v > 0 {
		s.Burst = v
	}
	if v, ok := store.Get(KeyDebounceMS); ok && v != nil {
		// Zero disables debouncing.
		if ms := store.GetInt(KeyDebounceMS); ms >= 0 {
			s.Debounce = time.Duration(ms) * time.Millisecond
		}
	}
	if v := store.GetInt(KeyPollSeconds); v > 0 {
		s.PollInterval = time.Duration(v) * time.Second
	}
	if v := store.GetString(KeyTransport); v != "" {
		s.Transport = v
	}
	if v := store.GetInt(KeyQueryTimeout); v > 0 {
		s.QueryTimeout = time.Duration(v) * time.Second
	}
	s.Organization = store.GetString(KeyOrganization)
	s.Verbose = store.GetBool(KeyVerbose)

	if v := getenv(EnvBaseURL); v != "" {
		s.BaseURL = v
	}
	if v := getenv(EnvOrganization); v != "" {
		s.Organization = v
	}
	s.Token = getenv(EnvToken)
	return s
}
