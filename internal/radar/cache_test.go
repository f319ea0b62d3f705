package radar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTileCache_BasicGetPut(t *testing.T) {
	c := newTileCache(3)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))

	data, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("A"), data)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestTileCache_FIFOEviction(t *testing.T) {
	c := newTileCache(2)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	c.put("c", []byte("C")) // evicts "a", the oldest insertion

	_, ok := c.get("a")
	assert.False(t, ok, "oldest insertion should have been evicted")

	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestTileCache_GetDoesNotPromote(t *testing.T) {
	c := newTileCache(2)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))

	// Reading "a" must not save it: eviction is insertion order, not recency.
	c.get("a")
	c.put("c", []byte("C"))

	_, ok := c.get("a")
	assert.False(t, ok, "FIFO ignores access recency")
	_, ok = c.get("b")
	assert.True(t, ok)
}

func TestTileCache_PutExistingKeyUpdatesInPlace(t *testing.T) {
	c := newTileCache(2)

	c.put("a", []byte("A1"))
	c.put("b", []byte("B"))
	c.put("a", []byte("A2")) // update, not a new insertion

	data, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("A2"), data)
	assert.Equal(t, 2, c.len())

	// "a" keeps its original insertion slot, so it is still evicted first.
	c.put("c", []byte("C"))
	_, ok = c.get("a")
	assert.False(t, ok)
}

func TestTileCache_Clear(t *testing.T) {
	c := newTileCache(10)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	c.clear()

	assert.Equal(t, 0, c.len())
	_, ok := c.get("a")
	assert.False(t, ok)

	// Usable after clearing.
	c.put("d", []byte("D"))
	data, ok := c.get("d")
	assert.True(t, ok)
	assert.Equal(t, []byte("D"), data)
}

func TestTileCache_EvictionUnderChurn(t *testing.T) {
	c := newTileCache(100)

	for i := 0; i < 250; i++ {
		c.put(tileKey(time.UnixMilli(int64(i)), 6, 18, 23), []byte{byte(i)})
	}
	assert.Equal(t, 100, c.len())

	// The newest 100 survive.
	_, ok := c.get(tileKey(time.UnixMilli(249), 6, 18, 23))
	assert.True(t, ok)
	_, ok = c.get(tileKey(time.UnixMilli(149), 6, 18, 23))
	assert.False(t, ok)
}

func TestTileKey_DistinguishesAllComponents(t *testing.T) {
	at := time.UnixMilli(1767178800000)
	base := tileKey(at, 6, 18, 23)

	assert.NotEqual(t, base, tileKey(at.Add(time.Millisecond), 6, 18, 23))
	assert.NotEqual(t, base, tileKey(at, 7, 18, 23))
	assert.NotEqual(t, base, tileKey(at, 6, 19, 23))
	assert.NotEqual(t, base, tileKey(at, 6, 18, 24))
}
