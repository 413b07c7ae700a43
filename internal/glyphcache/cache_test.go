package glyphcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetSet(t *testing.T) {
	c := New[uint32, string](0)

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Set(1, "a")
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, "a", v)
	assert.Equal(t, 1, c.Len())
}

func TestOverwrite(t *testing.T) {
	c := New[uint32, string](0)
	c.Set(1, "a")
	c.Set(1, "b")

	v, _ := c.Get(1)
	assert.Equal(t, "b", v)
	assert.Equal(t, 1, c.Len())
}

func TestEviction(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 5; i++ {
		c.Set(i, i)
	}

	// Exceeding the soft limit shrinks the cache to 3/4 of it.
	assert.Equal(t, 3, c.Len())

	// The most recent insertion survives eviction.
	_, ok := c.Get(4)
	assert.True(t, ok)
}

func TestEvictionKeepsRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := 0; i < 4; i++ {
		c.Set(i, i)
	}
	c.Get(0)
	c.Set(4, 4)

	_, ok := c.Get(0)
	assert.True(t, ok, "recently read entry was evicted")
	_, ok = c.Get(1)
	assert.False(t, ok, "oldest entry survived eviction")
}

func TestClear(t *testing.T) {
	c := New[int, int](0)
	c.Set(1, 1)
	c.Clear()
	assert.Zero(t, c.Len())
}
