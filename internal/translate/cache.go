package translate

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"doc-translator/internal/types"
)

// cacheVersion is bumped when the on-disk layout changes.
const cacheVersion = "1.0"

// CacheEntry is one cached translation.
type CacheEntry struct {
	Hash        string    `json:"hash"`
	Original    string    `json:"original"`
	Translation string    `json:"translation"`
	CreatedAt   time.Time `json:"created_at"`
}

type cacheFile struct {
	Version string       `json:"version"`
	Entries []CacheEntry `json:"entries"`
}

// Cache stores finished translations keyed by a hash of the source text and
// the translation scope (backend and language pair), so re-running a
// document skips already-translated items and a config change never reuses
// stale results.
type Cache struct {
	path    string
	scope   string
	entries map[string]CacheEntry
	mu      sync.RWMutex
}

// NewCache creates a cache persisted at path. scope should identify the
// backend and language pair, e.g. "openai/gpt-4o-mini|pt-BR|en-US". An
// empty path keeps the cache purely in memory.
func NewCache(path, scope string) *Cache {
	return &Cache{
		path:    path,
		scope:   scope,
		entries: make(map[string]CacheEntry),
	}
}

func (c *Cache) hash(text string) string {
	sum := sha256.Sum256([]byte(c.scope + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached translation for text, if present.
func (c *Cache) Get(text string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[c.hash(text)]
	if !ok {
		return "", false
	}
	return entry.Translation, true
}

// Set records a finished translation.
func (c *Cache) Set(text, translation string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.hash(text)
	c.entries[h] = CacheEntry{
		Hash:        h,
		Original:    text,
		Translation: translation,
		CreatedAt:   time.Now(),
	}
}

// Size returns the number of cached entries.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Load reads the cache file. A missing file leaves the cache empty.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		return nil
	}
	if _, err := os.Stat(c.path); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to read translation cache", err)
	}

	var file cacheFile
	if err := json.Unmarshal(data, &file); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to parse translation cache", err)
	}

	c.entries = make(map[string]CacheEntry, len(file.Entries))
	for _, entry := range file.Entries {
		c.entries[entry.Hash] = entry
	}
	return nil
}

// Save writes the cache file, creating parent directories as needed.
func (c *Cache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.path == "" {
		return nil
	}

	entries := make([]CacheEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(cacheFile{Version: cacheVersion, Entries: entries}, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal translation cache", err)
	}

	if dir := filepath.Dir(c.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return types.NewAppError(types.ErrInternal, "failed to create cache directory", err)
		}
	}
	if err := os.WriteFile(c.path, data, 0644); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to write translation cache", err)
	}
	return nil
}
