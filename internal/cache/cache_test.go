package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashCache_Claim(t *testing.T) {
	tests := []struct {
		name  string
		setup func(c *HashCache)
		md5   string
		path  string
		owner string
		fresh bool
	}{
		{"new hash", func(c *HashCache) {}, "a", "x.osu", "x.osu", true},
		{"copy elsewhere", func(c *HashCache) { c.Claim("a", "x.osu") }, "a", "y.osu", "x.osu", false},
		{"same file again", func(c *HashCache) { c.Claim("a", "x.osu") }, "a", "x.osu", "x.osu", true},
		{"other hash", func(c *HashCache) { c.Claim("a", "x.osu") }, "b", "y.osu", "y.osu", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewHashCache()
			tt.setup(c)
			owner, fresh := c.Claim(tt.md5, tt.path)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.fresh, fresh)
		})
	}
}

func TestHashCache_GetAndReset(t *testing.T) {
	c := NewHashCache()
	c.Claim("a", "x.osu")

	path, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "x.osu", path)
	assert.Equal(t, 1, c.Len())

	c.Reset()
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Len())
}

func TestHashCache_ConcurrentClaims(t *testing.T) {
	c := NewHashCache()
	var wg sync.WaitGroup
	var winners SafeCounter
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, fresh := c.Claim("same", string(rune('a'+i))); fresh {
				winners.Inc()
			}
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 1, winners.Value())
}

func TestSafeCounter(t *testing.T) {
	var c SafeCounter
	assert.Zero(t, c.Value())
	c.Inc()
	c.Inc()
	assert.Equal(t, 2, c.Value())
	c.Set(10)
	assert.Equal(t, 10, c.Value())
}
