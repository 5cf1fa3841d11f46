package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SeededValues(t *testing.T) {
	store := NewConfigStore(map[string]any{
		"api.base_url":     "http://kb.local",
		"api.rate_limit":   int64(5),
		"log.verbose":      true,
		"sync.debounce_ms": float64(2500),
	})

	assert.Equal(t, "http://kb.local", store.GetString("api.base_url"))
	assert.Equal(t, 5, store.GetInt("api.rate_limit"))
	assert.Equal(t, 2500, store.GetInt("sync.debounce_ms"))
	assert.True(t, store.GetBool("log.verbose"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_TypeMismatchReturnsZero(t *testing.T) {
	store := NewConfigStore(map[string]any{"api.timeout_seconds": []string{"x"}})

	assert.Equal(t, 0, store.GetInt("api.timeout_seconds"))
	assert.Empty(t, store.GetString("api.timeout_seconds"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_StringValuesFromCLI(t *testing.T) {
	store := NewConfigStore(nil)
	require.NoError(t, store.Set("api.burst", "40"))
	require.NoError(t, store.Set("log.verbose", "true"))

	assert.Equal(t, 40, store.GetInt("api.burst"))
	assert.True(t, store.GetBool("log.verbose"))

	val, ok := store.Get("api.burst")
	assert.True(t, ok)
	assert.Equal(t, "40", val)
}
