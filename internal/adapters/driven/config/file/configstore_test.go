package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestDefaultConfigDir(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultConfigDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".kbsync"), dir)
}

func TestNewConfigStore_CreatesNestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	require.NoError(t, store.Set("organization", "acme"))
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestConfigStore_SetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("test_key", "test_value"))

	val, ok := store.Get("test_key")
	assert.True(t, ok)
	assert.Equal(t, "test_value", val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("s", "hello"))
	require.NoError(t, store.Set("i", 42))
	require.NoError(t, store.Set("i_str", " 7 "))
	require.NoError(t, store.Set("b", true))
	require.NoError(t, store.Set("b_str", "true"))

	assert.Equal(t, "hello", store.GetString("s"))
	assert.Equal(t, "", store.GetString("i"))
	assert.Equal(t, 42, store.GetInt("i"))
	assert.Equal(t, 7, store.GetInt("i_str"))
	assert.Equal(t, 0, store.GetInt("s"))
	assert.True(t, store.GetBool("b"))
	assert.True(t, store.GetBool("b_str"))
	assert.False(t, store.GetBool("s"))
	assert.False(t, store.GetBool("missing"))
}

func TestConfigStore_SaveReload_NestsDottedKeys(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("api.base_url", "https://kb.example.com"))
	require.NoError(t, store.Set("api.timeout_seconds", 45))
	require.NoError(t, store.Set("organization", "acme"))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[api]")
	assert.Contains(t, string(raw), "base_url = ")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "https://kb.example.com", reloaded.GetString("api.base_url"))
	assert.Equal(t, 45, reloaded.GetInt("api.timeout_seconds"))
	assert.Equal(t, "acme", reloaded.GetString("organization"))
}

func TestConfigStore_Load_NonExistent(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
}

func TestConfigStore_Load_ReplacesValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("organization", "acme"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("organization = \"globex\"\n"), 0600))
	require.NoError(t, store.Load())

	assert.Equal(t, "globex", store.GetString("organization"))
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("this is [not toml"), 0600))

	_, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("key", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("counter", n)
		}(i)
		go func() {
			defer wg.Done()
			_ = store.GetInt("counter")
		}()
	}
	wg.Wait()

	_, ok := store.Get("counter")
	assert.True(t, ok)
}

func TestFlattenMap(t *testing.T) {
	nested := map[string]any{
		"api":          map[string]any{"base_url": "u", "limits": map[string]any{"burst": int64(5)}},
		"organization": "acme",
	}

	flat := flattenMap(nested, "")

	assert.Equal(t, map[string]any{
		"api.base_url":     "u",
		"api.limits.burst": int64(5),
		"organization":     "acme",
	}, flat)
	assert.Equal(t, nested, nestMap(flat))
}

func TestNestMap_ValueWinsOverTablePrefix(t *testing.T) {
	nested := nestMap(map[string]any{
		"api":          "plain",
		"api.base_url": "u",
	})

	assert.Equal(t, map[string]any{"api": "plain"}, nested)
}
