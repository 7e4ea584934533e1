package cache

import (
	"sync"
)

// HashCache remembers which file first produced each beatmap hash during an
// index run, so copies of the same .osu in other folders are skipped without
// another catalog write.
type HashCache struct {
	m      sync.Mutex
	Hashes map[string]string
}

func NewHashCache() *HashCache {
	return &HashCache{
		m:      sync.Mutex{},
		Hashes: make(map[string]string),
	}
}

func (c *HashCache) Reset() {
	c.m.Lock()
	defer c.m.Unlock()
	c.Hashes = make(map[string]string)
}

// Claim records path as the owner of md5 unless another path already is.
// It returns the owning path and whether this call claimed it.
func (c *HashCache) Claim(md5, path string) (string, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	if owner, ok := c.Hashes[md5]; ok {
		return owner, owner == path
	}
	c.Hashes[md5] = path
	return path, true
}

func (c *HashCache) Get(md5 string) (string, bool) {
	c.m.Lock()
	defer c.m.Unlock()
	path, ok := c.Hashes[md5]
	return path, ok
}

func (c *HashCache) Len() int {
	c.m.Lock()
	defer c.m.Unlock()
	return len(c.Hashes)
}

// SafeCounter is a thread-safe counter
type SafeCounter struct {
	mu sync.Mutex
	v  int
}

func (c *SafeCounter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.v
}

func (c *SafeCounter) Set(v int) {
	c.mu.Lock()
	c.v = v
	c.mu.Unlock()
}

func (c *SafeCounter) Inc() {
	c.mu.Lock()
	c.v++
	c.mu.Unlock()
}
