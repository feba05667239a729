// Package assets resolves material handles by logical name and caches them.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// ErrNotFound is returned when no source holds the requested name.
var ErrNotFound = errors.New("asset not found")

// Material is an opaque material handle. Data is whatever the source
// returned for the name; the terrain core never inspects it.
type Material struct {
	Name string
	Data []byte
}

// Source reads raw asset bytes by name.
type Source interface {
	Read(name string) ([]byte, error)
}

// DirSource reads assets from files under Root, appending Ext to the name.
type DirSource struct {
	Root string
	Ext  string
}

// Read implements Source.
func (d DirSource) Read(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.Root, name+d.Ext))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// MemSource serves assets from memory.
type MemSource map[string][]byte

// Read implements Source.
func (m MemSource) Read(name string) ([]byte, error) {
	data, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, nil
}

// Manager handles material loading from a stack of sources.
type Manager struct {
	sources []Source
	cache   *Cache
	pending map[string]*Future
	log     *zap.Logger
	mu      sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager(log *zap.Logger, sources ...Source) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		sources: sources,
		cache:   NewCache(),
		pending: make(map[string]*Future),
		log:     log,
	}
}

// AddSource adds a source to the manager.
// Sources are searched in reverse order (last added = highest priority).
func (m *Manager) AddSource(s Source) {
	m.mu.Lock()
	m.sources = append(m.sources, s)
	m.mu.Unlock()
}

// Material loads a material, blocking until it is available.
func (m *Manager) Material(name string) (*Material, error) {
	if mat, ok := m.cache.Get(name); ok {
		return mat, nil
	}

	mat, err := m.read(name)
	if err != nil {
		return nil, err
	}
	m.cache.Set(name, mat)
	return mat, nil
}

// LoadAsync starts loading a material in the background. A cached material
// yields an already resolved future. A second request for a name that is
// still loading returns the same pending future.
func (m *Manager) LoadAsync(name string) *Future {
	if mat, ok := m.cache.Get(name); ok {
		return Resolved(mat, nil)
	}

	m.mu.Lock()
	if f, ok := m.pending[name]; ok {
		m.mu.Unlock()
		return f
	}
	f := newFuture()
	m.pending[name] = f
	m.mu.Unlock()

	go func() {
		mat, err := m.read(name)
		if err == nil {
			m.cache.Set(name, mat)
		} else {
			m.log.Warn("async material load failed", zap.String("name", name), zap.Error(err))
		}

		m.mu.Lock()
		delete(m.pending, name)
		m.mu.Unlock()

		f.resolve(mat, err)
	}()
	return f
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

// Close drops all sources and cached materials.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sources = nil
	m.cache.Clear()
}

func (m *Manager) read(name string) (*Material, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Search sources in reverse order
	for i := len(m.sources) - 1; i >= 0; i-- {
		data, err := m.sources[i].Read(name)
		if err == nil {
			m.log.Debug("material loaded", zap.String("name", name), zap.Int("bytes", len(data)))
			return &Material{Name: name, Data: data}, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("reading material %s: %w", name, err)
		}
	}

	return nil, fmt.Errorf("%w: material %s", ErrNotFound, name)
}

// Cache is a simple in-memory cache for loaded materials.
type Cache struct {
	data map[string]*Material
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]*Material),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) (*Material, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mat, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mat, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, mat *Material) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = mat
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]*Material)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
