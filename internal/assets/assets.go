// Package assets compiles levels into worlds and keeps the results in
// memory and in an on-disk cache.
package assets

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/stepworld/internal/engine/terrain"
	"github.com/Faultbox/stepworld/internal/level"
	"github.com/Faultbox/stepworld/internal/logger"
	"github.com/Faultbox/stepworld/pkg/formats"
)

// CacheExt is the file extension of compiled world caches.
const CacheExt = ".swc"

// Manager hands out compiled worlds. With a cache directory set, worlds
// are read from and written to disk keyed by the level file.
type Manager struct {
	dir   string
	cache *Cache
	mu    sync.Mutex
}

// NewManager creates a manager. An empty dir disables the disk cache.
func NewManager(dir string) *Manager {
	return &Manager{
		dir:   dir,
		cache: NewCache(),
	}
}

// CachePath returns where the compiled form of a level file is stored.
func (m *Manager) CachePath(levelPath string) string {
	abs, err := filepath.Abs(levelPath)
	if err != nil {
		abs = levelPath
	}
	sum := sha1.Sum([]byte(abs))
	base := filepath.Base(levelPath)
	return filepath.Join(m.dir, base+"-"+hex.EncodeToString(sum[:4])+CacheExt)
}

// World returns the compiled world for lvl. A stale or unreadable disk
// cache is replaced, never fatal.
func (m *Manager) World(lvl *level.Level) (*terrain.World, error) {
	key := lvl.Path
	if key != "" {
		if world, ok := m.cache.Get(key, lvl.ModTime); ok {
			return world, nil
		}
	}

	heights, materials, err := lvl.Grids()
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", lvl.Name, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	useDisk := m.dir != "" && key != ""
	if useDisk {
		if world := m.readCache(lvl, heights); world != nil {
			m.cache.Set(key, lvl.ModTime, world)
			return world, nil
		}
	}

	world, err := terrain.Compile(heights, materials)
	if err != nil {
		return nil, fmt.Errorf("compiling %s: %w", lvl.Name, err)
	}
	st := world.Stats()
	logger.Info("world compiled",
		zap.String("level", lvl.Name),
		zap.Int("width", st.Width),
		zap.Int("depth", st.Depth),
		zap.Int("sectors", st.Sectors),
		zap.Int("faces", st.Faces),
		zap.Int("edge_faces", st.EdgeFaces))

	if useDisk {
		path := m.CachePath(key)
		if err := formats.WriteWorldCacheFile(path, &formats.WorldCache{ModTime: lvl.ModTime, World: world}); err != nil {
			logger.Warn("writing world cache failed", zap.String("path", path), zap.Error(err))
		}
	}
	if key != "" {
		m.cache.Set(key, lvl.ModTime, world)
	}
	return world, nil
}

func (m *Manager) readCache(lvl *level.Level, heights *terrain.HeightGrid) *terrain.World {
	path := m.CachePath(lvl.Path)
	c, err := formats.ParseWorldCacheFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		logger.Warn("discarding world cache", zap.String("path", path), zap.Error(err))
		return nil
	case !c.Matches(lvl.ModTime, heights.Width(), heights.Depth()):
		logger.Debug("world cache is stale", zap.String("path", path))
		return nil
	}
	logger.Debug("world loaded from cache", zap.String("path", path))
	return c.World
}

// Close drops every world held in memory.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Stats returns memory cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

type cacheEntry struct {
	modTime int64
	world   *terrain.World
}

// Cache holds compiled worlds in memory, keyed by level path.
type Cache struct {
	data map[string]cacheEntry
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]cacheEntry),
	}
}

// Get returns the world stored for key if it was compiled from the level
// version with the given modification time.
func (c *Cache) Get(key string, modTime int64) (*terrain.World, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.data[key]
	if ok && e.modTime == modTime {
		c.hits++
		return e.world, true
	}
	c.misses++
	return nil, false
}

// Set stores a world in the cache.
func (c *Cache) Set(key string, modTime int64, world *terrain.World) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = cacheEntry{modTime: modTime, world: world}
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string]cacheEntry)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
