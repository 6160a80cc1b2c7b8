// Package assets resolves and caches the files the viewer reads: images and
// point cloud files.
package assets

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sync"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/seqsense/pcgol/pc"
)

// ErrNotFound is returned when a path resolves in none of the roots.
var ErrNotFound = errors.New("asset not found")

// Manager loads files from a list of search roots.
type Manager struct {
	roots  []string
	files  *Cache[[]byte]
	images *Cache[image.Image]
	clouds *Cache[*pc.PointCloud]
	mu     sync.RWMutex
}

// NewManager creates a new asset manager. Without roots, paths are used as
// given.
func NewManager() *Manager {
	return &Manager{
		files:  NewCache[[]byte](),
		images: NewCache[image.Image](),
		clouds: NewCache[*pc.PointCloud](),
	}
}

// AddRoot adds a search directory.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()
	return nil
}

// Resolve returns the file path for path. Absolute paths and paths that
// exist relative to the working directory are returned unchanged.
func (m *Manager) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Load reads a file.
func (m *Manager) Load(path string) ([]byte, error) {
	if data, ok := m.files.Get(path); ok {
		return data, nil
	}

	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}
	m.files.Set(path, data)
	return data, nil
}

// LoadImage decodes an image file (PNG, JPEG or BMP).
func (m *Manager) LoadImage(path string) (image.Image, error) {
	if img, ok := m.images.Get(path); ok {
		return img, nil
	}

	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	img, err := imgio.Open(resolved)
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", resolved, err)
	}
	m.images.Set(path, img)
	return img, nil
}

// LoadPointCloud parses a PCD file.
func (m *Manager) LoadPointCloud(path string) (*pc.PointCloud, error) {
	if cloud, ok := m.clouds.Get(path); ok {
		return cloud, nil
	}

	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", resolved, err)
	}
	cloud, err := pc.Unmarshal(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing point cloud %s: %w", resolved, err)
	}
	m.clouds.Set(path, cloud)
	return cloud, nil
}

// Evict drops every cached entry for path.
func (m *Manager) Evict(path string) {
	m.files.Delete(path)
	m.images.Delete(path)
	m.clouds.Delete(path)
}

// Stats returns combined cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	for _, s := range [][2]int{pair(m.files.Stats()), pair(m.images.Stats()), pair(m.clouds.Stats())} {
		hits += s[0]
		misses += s[1]
	}
	return hits, misses
}

// Close clears all caches.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.files.Clear()
	m.images.Clear()
	m.clouds.Clear()
}

func pair(a, b int) [2]int {
	return [2]int{a, b}
}

// Cache is a simple in-memory cache for loaded assets.
type Cache[V any] struct {
	data map[string]V
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache[V any]() *Cache[V] {
	return &Cache[V]{
		data: make(map[string]V),
	}
}

// Get retrieves an item from cache.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Set stores an item in cache.
func (c *Cache[V]) Set(key string, v V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = v
}

// Delete removes an item from cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

// Len returns the number of cached items.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]V)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
