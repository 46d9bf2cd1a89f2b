// Package assets loads page images from asset directories.
package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("assets: not found")

// Manager loads files from a stack of directory roots.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddRoot adds a directory to the manager.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("opening asset root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("opening asset root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()

	return nil
}

// Roots returns the asset roots, lowest priority first.
func (m *Manager) Roots() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.roots...)
}

// Load reads an asset by its slash-separated path.
func (m *Manager) Load(name string) ([]byte, error) {
	key, err := clean(name)
	if err != nil {
		return nil, err
	}
	if data, ok := m.cache.Get(key); ok {
		return data, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		data, err := os.ReadFile(filepath.Join(m.roots[i], filepath.FromSlash(key)))
		if err == nil {
			m.cache.Set(key, data)
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", key, err)
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
}

// Exists reports whether some root holds name.
func (m *Manager) Exists(name string) bool {
	key, err := clean(name)
	if err != nil {
		return false
	}
	if _, ok := m.cache.Get(key); ok {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		info, err := os.Stat(filepath.Join(m.roots[i], filepath.FromSlash(key)))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}

// Close forgets every root and cached file.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}

// Cache returns the manager's byte cache.
func (m *Manager) Cache() *Cache {
	return m.cache
}

// clean normalises an asset path and keeps it inside the roots.
func clean(name string) (string, error) {
	key := path.Clean("/" + strings.ReplaceAll(name, "\\", "/"))[1:]
	if key == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}
	return key, nil
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.Mutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Len returns the number of cached files.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
