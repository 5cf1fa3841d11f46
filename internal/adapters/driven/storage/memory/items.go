package memory

import (
	"sync"

	"github.com/custodia-labs/kbsync/internal/core/domain"
	"github.com/custodia-labs/kbsync/internal/core/ports/driven"
)

// Ensure ItemCache implements the interfaces.
var (
	_ driven.ItemCache   = (*ItemCache)(nil)
	_ driven.UploadState = (*ItemCache)(nil)
)

// ItemCache is the in-memory knowledge item cache together with its error
// slot and the upload pipeline state.
type ItemCache struct {
	mu       sync.RWMutex
	items    []domain.KnowledgeItem
	errMsg   string
	warnings []string

	processing bool
	progress   float64
	version    uint64
	epoch      uint64
}

// NewItemCache creates an empty cache.
func NewItemCache() *ItemCache {
	return &ItemCache{}
}

// Items returns a copy of the cached items in insertion order.
func (c *ItemCache) Items() []domain.KnowledgeItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.KnowledgeItem, len(c.items))
	copy(out, c.items)
	return out
}

// Replace swaps the entire cache.
func (c *ItemCache) Replace(items []domain.KnowledgeItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]domain.KnowledgeItem, len(items))
	copy(c.items, items)
	c.version++
}

// Append adds item, replacing an existing item with the same ID in place.
func (c *ItemCache) Append(item domain.KnowledgeItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.appendLocked(item)
}

// Epoch returns the number of times the cache has been cleared.
func (c *ItemCache) Epoch() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.epoch
}

// AppendIf appends item unless the cache was cleared since epoch.
func (c *ItemCache) AppendIf(item domain.KnowledgeItem, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.appendLocked(item)
	return true
}

func (c *ItemCache) appendLocked(item domain.KnowledgeItem) {
	c.version++
	for i := range c.items {
		if c.items[i].ID == item.ID {
			c.items[i] = item
			return
		}
	}
	c.items = append(c.items, item)
}

// Remove deletes the item with id.
func (c *ItemCache) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.version++
			return true
		}
	}
	return false
}

// Clear empties the cache and the warning list.
func (c *ItemCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.warnings = nil
	c.version++
	c.epoch++
}

// Len returns the number of cached items.
func (c *ItemCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Version increases on every mutation of the item list.
func (c *ItemCache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// SetError sets the shared error slot.
func (c *ItemCache) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

// Error returns the shared error slot.
func (c *ItemCache) Error() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.errMsg
}

// SetUploadProgress records the upload processing flag and progress.
func (c *ItemCache) SetUploadProgress(processing bool, progress float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processing = processing
	c.progress = progress
}

// UploadProgress returns the upload processing flag and progress.
func (c *ItemCache) UploadProgress() (bool, float64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.processing, c.progress
}

// AddWarning records a non-fatal warning.
func (c *ItemCache) AddWarning(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, msg)
}

// Warnings returns the recorded warnings.
func (c *ItemCache) Warnings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}
